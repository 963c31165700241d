// Package types holds the small set of primitives shared by the
// other packages in this module (resolver, protocols, ast, filters,
// marshal, explain). Keeping them here avoids import
// cycles between packages that all need to talk about "some value
// read off a host object".
package types

// A Generic object read off a host value. The engine never assumes
// anything about the concrete type beyond what the protocols package
// can establish about it.
type Any interface{}

// Value names an Any used as a single scalar/composite reading, as
// opposed to one that is itself a Sequence.
type Value = Any
