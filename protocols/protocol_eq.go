// Package protocols implements the structural-equality, ordering,
// membership and regex-match protocols the filter algebra's binary
// operators are built from (spec.md §4.3). Each protocol follows the
// teacher's dispatcher pattern (protocol_eq.go, protocol_lt.go,
// protocol_membership.go, protocol_regex.go): a handful of fast-path
// built-in type switches, falling through to a registered
// []XxxProtocol for host-specific extensions via AddImpl.
package protocols

import (
	"context"
	"reflect"

	"github.com/google/objectfilter/types"
	"github.com/google/objectfilter/utils"
)

// Logger is the ambient logging surface every dispatcher accepts,
// mirroring resolver.Logger (and the teacher's scope.Log/scope.Trace
// split) without introducing a dependency on the resolver package.
type Logger interface {
	Log(format string, args ...interface{})
	Trace(format string, args ...interface{})
}

// EqProtocol lets a host register a custom structural-equality rule
// for types the built-in fast paths don't cover.
type EqProtocol interface {
	Applicable(a, b types.Any) bool
	Eq(ctx context.Context, a, b types.Any) bool
}

type EqDispatcher struct {
	impl   []EqProtocol
	Logger Logger
}

func (d *EqDispatcher) AddImpl(elements ...EqProtocol) {
	d.impl = append(d.impl, elements...)
}

// Eq implements structural equality (spec.md §4.3's Equals/NotEquals):
// scalars compare by value, arrays compare element-wise recursively,
// and a lazy Sequence operand is drained once to materialise it for
// the comparison.
func (d *EqDispatcher) Eq(ctx context.Context, a, b types.Any) bool {
	a = derefSequence(ctx, a)
	b = derefSequence(ctx, b)

	switch t := a.(type) {
	case nil:
		return types.IsNullObject(b)
	case types.Null, *types.Null:
		return types.IsNullObject(b)

	case string:
		rhs, ok := b.(string)
		if ok {
			return t == rhs
		}
		return false

	case bool:
		rhs, ok := b.(bool)
		if ok {
			return t == rhs
		}
		return false
	}

	if utils.IsInt(a) && utils.IsInt(b) {
		lhs, _ := utils.ToInt64(a)
		rhs, _ := utils.ToInt64(b)
		return lhs == rhs
	}

	if lhs, ok := utils.ToFloat(a); ok {
		if rhs, ok := utils.ToFloat(b); ok {
			return lhs == rhs
		}
	}

	if isArray(a) && isArray(b) {
		return d.arrayEq(ctx, a, b)
	}

	for i, impl := range d.impl {
		if impl.Applicable(a, b) {
			if d.Logger != nil {
				d.Logger.Trace("protocols: Eq dispatched to impl %d for %T/%T", i, a, b)
			}
			return impl.Eq(ctx, a, b)
		}
	}

	if d.Logger != nil {
		d.Logger.Trace("protocols: no Eq implementation for %v (%T) and %v (%T)", a, a, b, b)
	}
	return false
}

func (d *EqDispatcher) arrayEq(ctx context.Context, a, b types.Any) bool {
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Len() != vb.Len() {
		return false
	}
	for i := 0; i < va.Len(); i++ {
		if !d.Eq(ctx, va.Index(i).Interface(), vb.Index(i).Interface()) {
			return false
		}
	}
	return true
}

// derefSequence drains a lazy types.Sequence into a materialised
// slice so structural equality (which needs arity up front) can
// compare it; non-Sequence values pass through untouched.
func derefSequence(ctx context.Context, v types.Any) types.Any {
	if seq, ok := v.(types.Sequence); ok {
		return types.Materialize(ctx, seq)
	}
	return v
}

func isArray(a types.Any) bool {
	rt := reflect.TypeOf(a)
	if rt == nil {
		return false
	}
	return rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array
}
