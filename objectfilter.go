// Package objectfilter is an embeddable predicate engine: given a
// textual filter query and a heterogeneous in-memory object, it
// decides whether the object satisfies the predicate (spec.md §1).
//
// Parse turns query text into a tree (objectfilter/ast); Compile
// lowers that tree into an executable objectfilter/filters.Node
// against a chosen objectfilter/resolver.AttributeResolver and
// objectfilter/protocols.Registry. Most callers only need the
// package-level Parse and an Engine's Compile/Matches methods below.
package objectfilter

import (
	"context"

	"github.com/google/objectfilter/ast"
	"github.com/google/objectfilter/compiler"
	"github.com/google/objectfilter/filters"
	"github.com/google/objectfilter/parser"
	"github.com/google/objectfilter/protocols"
	"github.com/google/objectfilter/resolver"
)

// Parse turns query text into a parse tree. The only error it can
// return is a *ParseError.
func Parse(query string) (ast.Node, error) {
	node, err := parser.Parse(query)
	if err != nil {
		return nil, &ParseError{Query: query, Cause: err}
	}
	return node, nil
}

// Engine bundles the resolver, protocol dispatchers and compiler a
// host program builds once and reuses across many Compile calls —
// the long-lived counterpart to the teacher's types.Scope.
type Engine struct {
	Resolver resolver.AttributeResolver
	Registry *protocols.Registry
	Compiler *compiler.Compiler
}

// NewEngine wires up the default reflect/ordereddict-aware resolver
// and the built-in protocol dispatchers. logger may be nil.
func NewEngine(logger Logger) *Engine {
	res := resolver.NewDefaultResolver(logger)
	reg := protocols.NewRegistry(logger)
	expander := resolver.NewExpander(res)
	return &Engine{
		Resolver: res,
		Registry: reg,
		Compiler: compiler.New(expander, reg),
	}
}

// Logger is the ambient logging interface threaded through resolution
// and protocol dispatch (spec.md's ambient-stack logging convention;
// see resolver.Logger/protocols.Logger, which this interface already
// structurally satisfies).
type Logger interface {
	Log(format string, args ...interface{})
	Trace(format string, args ...interface{})
}

// Compile parses and compiles query in one step against e.
func (e *Engine) Compile(query string) (filters.Node, error) {
	node, err := Parse(query)
	if err != nil {
		return nil, err
	}
	return e.Compiler.Compile(node)
}

// Matches parses, compiles and evaluates query against root in one
// call. Most one-off callers want this; an embedder issuing the same
// query repeatedly should Compile once and reuse the result.
func (e *Engine) Matches(ctx context.Context, query string, root interface{}) (bool, error) {
	node, err := e.Compile(query)
	if err != nil {
		return false, err
	}
	return node.Matches(ctx, root), nil
}
