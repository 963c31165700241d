// Package filters is the compiled, executable half of the filter
// algebra (spec.md §4.3): BinaryOp, And, Or, Not and Context nodes
// that know how to Match a host object, as opposed to objectfilter/ast's
// uninterpreted parse tree. objectfilter/compiler turns one into the
// other.
package filters

import (
	"context"

	"github.com/google/objectfilter/resolver"
	"github.com/google/objectfilter/types"
)

// Node is a compiled predicate ready to evaluate against a host
// object.
type Node interface {
	Matches(ctx context.Context, root types.Any) bool
	ToString() string
}

// Operation is what a BinaryOp delegates the actual value test to,
// typically one of the protocols dispatchers' bound methods
// (registry.Eq.Eq, registry.Lt.Lt, ...).
type Operation func(ctx context.Context, v, literal types.Any) bool

// BinaryOp walks path, flattening each group to the single value the
// operator template operates on (spec.md §4.3), and returns true as
// soon as any group/value satisfies Operation.
type BinaryOp struct {
	Expander *resolver.Expander
	Path     []string
	Keyword  string
	Literal  types.Any
	Op       Operation
}

func (b *BinaryOp) Matches(ctx context.Context, root types.Any) bool {
	groups := b.Expander.Expand(ctx, root, b.Path)
	for _, g := range groups {
		v, ok := FlattenGroup(g)
		if !ok {
			continue
		}
		if b.Op(ctx, v, b.Literal) {
			return true
		}
	}
	return false
}

func (b *BinaryOp) ToString() string {
	return PathString(b.Path) + " " + b.Keyword + " " + LiteralToString(b.Literal)
}

// FlattenGroup is spec.md §4.3's flatten_one_level: a Resolved group
// that represents a single scalar/composite reading unwraps to that
// bare value; a group whose terminal member is itself sequence-valued
// (a host list, or a lazy generator, including an empty one) passes
// the whole Sequence through as one value, so inset/contains can
// apply their own "is v a sequence" rule (spec.md's subset note — an
// empty sequence must still reach the operator, not be skipped).
func FlattenGroup(g resolver.Resolved) (types.Any, bool) {
	if !g.Present {
		return nil, false
	}
	if g.IsSeq {
		return g.Seq, true
	}
	return g.Value, true
}

// And/Or are flat n-ary boolean combinators (short-circuiting).
type And struct{ Operands []Node }

func (a *And) Matches(ctx context.Context, root types.Any) bool {
	for _, op := range a.Operands {
		if !op.Matches(ctx, root) {
			return false
		}
	}
	return true
}

func (a *And) ToString() string { return joinNodes(a.Operands, " and ") }

type Or struct{ Operands []Node }

func (o *Or) Matches(ctx context.Context, root types.Any) bool {
	for _, op := range o.Operands {
		if op.Matches(ctx, root) {
			return true
		}
	}
	return false
}

func (o *Or) ToString() string { return joinNodes(o.Operands, " or ") }

func joinNodes(nodes []Node, sep string) string {
	out := "("
	for i, n := range nodes {
		if i > 0 {
			out += sep
		}
		out += n.ToString()
	}
	return out + ")"
}

type Not struct{ Operand Node }

func (n *Not) Matches(ctx context.Context, root types.Any) bool {
	return !n.Operand.Matches(ctx, root)
}

func (n *Not) ToString() string { return "not " + n.Operand.ToString() }

// Context re-roots Operand against every element reached by expanding
// Path over root, matching if any such sub-object satisfies Operand
// (spec.md §4.3's context operator / co-occurrence semantics). This is
// what distinguishes "imported_dlls.name == 'a' and
// imported_dlls.imported_functions contains 'b'" (true if two
// *different* DLLs each satisfy one half) from "@imported_dlls(name
// == 'a' and imported_functions contains 'b')" (true only if the
// *same* DLL satisfies both).
type Context struct {
	Expander *resolver.Expander
	Path     []string
	Operand  Node
}

func (c *Context) Matches(ctx context.Context, root types.Any) bool {
	groups := c.Expander.Expand(ctx, root, c.Path)
	for _, g := range groups {
		v, ok := FlattenGroup(g)
		if !ok {
			continue
		}
		if seq, ok := v.(types.Sequence); ok {
			for {
				elem, ok := seq.Next(ctx)
				if !ok {
					break
				}
				if c.Operand.Matches(ctx, elem) {
					return true
				}
			}
			continue
		}
		if c.Operand.Matches(ctx, v) {
			return true
		}
	}
	return false
}

func (c *Context) ToString() string {
	return "@" + PathString(c.Path) + "(" + c.Operand.ToString() + ")"
}

func PathString(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
