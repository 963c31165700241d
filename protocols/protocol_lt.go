package protocols

import (
	"context"
	"math"
	"time"

	"github.com/google/objectfilter/types"
	"github.com/google/objectfilter/utils"
)

// LtProtocol lets a host register a custom ordering rule for types
// the built-in fast paths don't cover.
type LtProtocol interface {
	Applicable(a, b types.Any) bool
	Lt(ctx context.Context, a, b types.Any) bool
}

type LtDispatcher struct {
	impl   []LtProtocol
	Logger Logger
}

func (d *LtDispatcher) AddImpl(elements ...LtProtocol) {
	d.impl = append([]LtProtocol{}, append(elements, d.impl...)...)
}

// Lt implements the ordering comparison Less/LessEqual/Greater/
// GreaterEqual are all built from (spec.md §3, §4.3): numeric
// promotion between ints, floats and bools; string comparison is
// lexicographic; time.Time values compare chronologically and accept
// epoch-seconds numbers on the other side. A pair the host can't
// order (e.g. a scalar against a sequence/composite) simply returns
// false rather than panicking, per the scalar-vs-non-scalar skip
// rule.
func (d *LtDispatcher) Lt(ctx context.Context, a, b types.Any) bool {
	a = derefSequence(ctx, a)
	b = derefSequence(ctx, b)

	switch t := a.(type) {
	case types.Null, *types.Null, nil:
		return false

	case string:
		if !isTime(b) {
			if rhs, ok := b.(string); ok {
				return t < rhs
			}
		}

	case bool, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		if isTime(b) {
			if lhs, ok := utils.ToInt64(t); ok {
				if rhs, ok := toTime(b); ok {
					return time.Unix(lhs, 0).Before(*rhs)
				}
			}
		}
		if lhs, ok := utils.ToInt64(t); ok {
			return intLt(lhs, b)
		}

	case float64:
		if rhs, ok := utils.ToFloat(b); ok {
			return t < rhs
		}

	case time.Time:
		if rhs, ok := toTime(b); ok {
			return t.Before(*rhs)
		}

	case *time.Time:
		if rhs, ok := toTime(b); ok {
			return t.Before(*rhs)
		}
	}

	switch t := b.(type) {
	case types.Null, *types.Null, nil:
		return false

	case int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		if lhs, ok := utils.ToInt64(a); ok {
			rhs, _ := utils.ToInt64(t)
			return lhs < rhs
		}
		if lhs, ok := utils.ToFloat(a); ok {
			rhs, _ := utils.ToFloat(t)
			return lhs < rhs
		}

	case float64:
		if lhs, ok := utils.ToFloat(a); ok {
			return lhs < t
		}

	case time.Time:
		if lhs, ok := toTime(a); ok {
			return t.After(*lhs)
		}

	case *time.Time:
		if lhs, ok := toTime(a); ok {
			return t.After(*lhs)
		}
	}

	for i, impl := range d.impl {
		if impl.Applicable(a, b) {
			if d.Logger != nil {
				d.Logger.Trace("protocols: Lt dispatched to impl %d for %T/%T", i, a, b)
			}
			return impl.Lt(ctx, a, b)
		}
	}

	return false
}

func intLt(lhs int64, b types.Any) bool {
	switch b.(type) {
	case bool, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		rhs, _ := utils.ToInt64(b)
		return lhs < rhs
	case float64, float32:
		rhs, _ := utils.ToFloat(b)
		return float64(lhs) < rhs
	}
	return false
}

func isTime(a types.Any) bool {
	switch a.(type) {
	case time.Time, *time.Time:
		return true
	}
	return false
}

func toTime(a types.Any) (*time.Time, bool) {
	switch t := a.(type) {
	case time.Time:
		return &t, true

	case *time.Time:
		return t, true

	case float64:
		secF, decF := math.Modf(t)
		decF *= 1e9
		res := time.Unix(int64(secF), int64(decF))
		return &res, true

	default:
		if sec, ok := utils.ToInt64(a); ok {
			res := time.Unix(sec, 0)
			return &res, true
		}
		return nil, false
	}
}
