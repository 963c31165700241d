// Package compiler turns an objectfilter/ast parse tree into an
// executable objectfilter/filters tree (spec.md §4.6). The operator
// keyword on a BinaryExpr is resolved through a FilterImplementation
// registry rather than a hard-coded switch, mirroring how the teacher
// lets a host register scope.Functions/scope.Plugins before any query
// runs (scope/scope.go) instead of baking the built-ins into the
// grammar.
package compiler

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/google/objectfilter/ast"
	"github.com/google/objectfilter/filters"
	"github.com/google/objectfilter/protocols"
	"github.com/google/objectfilter/resolver"
)

// FilterImplementation builds the Operation a BinaryOp keyword
// delegates to, given the shared protocol dispatchers.
type FilterImplementation func(reg *protocols.Registry) filters.Operation

// Compiler holds everything a Compile call needs: how to expand paths
// against a host object, the shared equality/ordering/membership/regex
// dispatchers, and the keyword → implementation registry.
type Compiler struct {
	Expander *resolver.Expander
	Registry *protocols.Registry
	impls    map[string]FilterImplementation
}

func New(expander *resolver.Expander, registry *protocols.Registry) *Compiler {
	c := &Compiler{
		Expander: expander,
		Registry: registry,
		impls:    map[string]FilterImplementation{},
	}
	for kw, impl := range defaultImplementations {
		c.impls[kw] = impl
	}
	return c
}

// AddImplementation registers or overrides the Operation for an
// operator keyword, the extension point spec.md §4.6 and the ambient
// stack's "configuration" section describe.
func (c *Compiler) AddImplementation(keyword string, impl FilterImplementation) {
	c.impls[keyword] = impl
}

// UnknownOperator is returned by Compile when a BinaryExpr's Op has no
// registered FilterImplementation.
type UnknownOperator struct {
	Op string
}

func (e *UnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Op)
}

// InvalidNumberOfOperands is returned when a combinator node was built
// with the wrong arity (defensive: the parser never produces one, but
// a hand-assembled ast.Node — e.g. round-tripped through
// objectfilter/marshal — might).
type InvalidNumberOfOperands struct {
	Node string
	N    int
}

func (e *InvalidNumberOfOperands) Error() string {
	return fmt.Sprintf("%s: invalid number of operands (%d)", e.Node, e.N)
}

// Compile recursively lowers one ast.Node into a filters.Node.
func (c *Compiler) Compile(node ast.Node) (filters.Node, error) {
	switch n := node.(type) {
	case *ast.BinaryExpr:
		return c.compileBinary(n)

	case *ast.AndExpr:
		if len(n.Operands) == 0 {
			return nil, &InvalidNumberOfOperands{Node: "and", N: 0}
		}
		operands, err := c.compileAll(n.Operands)
		if err != nil {
			return nil, err
		}
		return &filters.And{Operands: operands}, nil

	case *ast.OrExpr:
		if len(n.Operands) == 0 {
			return nil, &InvalidNumberOfOperands{Node: "or", N: 0}
		}
		operands, err := c.compileAll(n.Operands)
		if err != nil {
			return nil, err
		}
		return &filters.Or{Operands: operands}, nil

	case *ast.NotExpr:
		operand, err := c.Compile(n.Operand)
		if err != nil {
			return nil, err
		}
		return &filters.Not{Operand: operand}, nil

	case *ast.ContextExpr:
		operand, err := c.Compile(n.Operand)
		if err != nil {
			return nil, err
		}
		return &filters.Context{Expander: c.Expander, Path: n.Path, Operand: operand}, nil
	}

	return nil, errors.Errorf("compiler: unrecognised ast node %T", node)
}

func (c *Compiler) compileAll(nodes []ast.Node) ([]filters.Node, error) {
	out := make([]filters.Node, 0, len(nodes))
	for _, n := range nodes {
		compiled, err := c.Compile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled)
	}
	return out, nil
}

// BadRegex is returned at Compile time when a "regexp" operator's
// literal operand is not a valid regular expression — caught eagerly
// rather than deferred to evaluation time (where the dispatcher would
// otherwise have to silently treat it as a permanent non-match).
type BadRegex struct {
	Pattern string
	Cause   error
}

func (e *BadRegex) Error() string {
	return fmt.Sprintf("invalid regexp literal %q: %v", e.Pattern, e.Cause)
}

func (c *Compiler) compileBinary(n *ast.BinaryExpr) (filters.Node, error) {
	ctor, ok := c.impls[n.Op]
	if !ok {
		return nil, fmt.Errorf("compiling %q: %w", filters.PathString(n.Path), &UnknownOperator{Op: n.Op})
	}
	if n.Op == "regexp" {
		if pattern, ok := n.Literal.Value().(string); ok {
			if _, err := regexp.Compile("(?i)" + pattern); err != nil {
				return nil, &BadRegex{Pattern: pattern, Cause: err}
			}
		}
	}
	return &filters.BinaryOp{
		Expander: c.Expander,
		Path:     n.Path,
		Keyword:  n.Op,
		Literal:  n.Literal.Value(),
		Op:       ctor(c.Registry),
	}, nil
}

var defaultImplementations = map[string]FilterImplementation{
	"==": func(r *protocols.Registry) filters.Operation { return r.Eq.Eq },
	"is": func(r *protocols.Registry) filters.Operation { return r.Eq.Eq },

	"!=": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool { return !r.Eq.Eq(ctx, v, lit) }
	},
	"isnot": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool { return !r.Eq.Eq(ctx, v, lit) }
	},

	"<": func(r *protocols.Registry) filters.Operation { return r.Lt.Lt },
	"<=": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool {
			return r.Lt.Lt(ctx, v, lit) || r.Eq.Eq(ctx, v, lit)
		}
	},
	">": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool { return r.Lt.Lt(ctx, lit, v) }
	},
	">=": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool {
			return r.Lt.Lt(ctx, lit, v) || r.Eq.Eq(ctx, v, lit)
		}
	},

	"contains": func(r *protocols.Registry) filters.Operation { return r.Membership.Contains },
	"notcontains": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool { return !r.Membership.Contains(ctx, v, lit) }
	},

	"inset": func(r *protocols.Registry) filters.Operation { return r.Membership.InSet },
	"notinset": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool { return !r.Membership.InSet(ctx, v, lit) }
	},

	// Regex.Match takes (pattern, target); a BinaryOp's Operation takes
	// (v, literal) where literal is the query-supplied pattern and v is
	// the host value being tested, so the arguments must be swapped.
	"regexp": func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, lit interface{}) bool { return r.Regex.Match(ctx, lit, v) }
	},
}
