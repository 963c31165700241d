// Package explain is an optional evaluation tracer for a compiled
// objectfilter/filters tree. Grounded on the teacher's
// explain/logging_explainer.go, which hooks a LoggingExplainer into
// types.Scope's StartQuery/PluginOutput/SelectOutput/RejectRow
// callbacks and logs each one via repr.String. Our compiled nodes have
// no Scope to register callbacks with, so instead of callbacks we wrap
// the tree itself: Wrap walks the same five node shapes
// objectfilter/filters produces and returns an equivalent tree whose
// Matches method logs its own verdict before returning it.
package explain

import (
	"context"

	"github.com/google/objectfilter/filters"
	"github.com/google/objectfilter/types"
)

// Logger is the ambient logging interface traced nodes write to,
// structurally identical to resolver.Logger/protocols.Logger/the root
// package's Logger so any concrete logger already satisfies it.
type Logger interface {
	Log(format string, args ...interface{})
	Trace(format string, args ...interface{})
}

// Wrap returns a filters.Node equivalent to node, except every
// sub-match logs its own "<rendered node> -> true/false" line to
// logger. depth indents nested matches so And/Or/Not/Context children
// are visually distinguishable from their parent in the log, the way
// the teacher's "DEBUG:  arg parsing:" / "DEBUG: plugin ..." prefixes
// distinguish query phases.
func Wrap(node filters.Node, logger Logger) filters.Node {
	return wrap(node, logger, 0)
}

func wrap(node filters.Node, logger Logger, depth int) filters.Node {
	switch n := node.(type) {
	case *filters.And:
		operands := make([]filters.Node, len(n.Operands))
		for i, op := range n.Operands {
			operands[i] = wrap(op, logger, depth+1)
		}
		return &traced{inner: &filters.And{Operands: operands}, logger: logger, depth: depth}

	case *filters.Or:
		operands := make([]filters.Node, len(n.Operands))
		for i, op := range n.Operands {
			operands[i] = wrap(op, logger, depth+1)
		}
		return &traced{inner: &filters.Or{Operands: operands}, logger: logger, depth: depth}

	case *filters.Not:
		return &traced{inner: &filters.Not{Operand: wrap(n.Operand, logger, depth+1)}, logger: logger, depth: depth}

	case *filters.Context:
		return &traced{inner: &filters.Context{
			Expander: n.Expander,
			Path:     n.Path,
			Operand:  wrap(n.Operand, logger, depth+1),
		}, logger: logger, depth: depth}

	default:
		// *filters.BinaryOp and anything else without visible children:
		// trace it directly, nothing to recurse into.
		return &traced{inner: node, logger: logger, depth: depth}
	}
}

// traced decorates one node with a log line per Matches call. It
// implements filters.Node itself so wrapping composes: an And's
// operands are each a *traced, and the And's own Matches call is
// wrapped by another *traced one level up.
type traced struct {
	inner  filters.Node
	logger Logger
	depth  int
}

func (t *traced) Matches(ctx context.Context, root types.Any) bool {
	result := t.inner.Matches(ctx, root)
	indent := indentOf(t.depth)
	if result {
		t.logger.Trace("%sEXPLAIN: %s -> true", indent, t.inner.ToString())
	} else {
		t.logger.Trace("%sEXPLAIN: %s -> false (rejected)", indent, t.inner.ToString())
	}
	return result
}

func (t *traced) ToString() string { return t.inner.ToString() }

func indentOf(depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	return out
}
