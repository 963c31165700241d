package protocols

import (
	"context"
	"reflect"
	"strings"

	"github.com/google/objectfilter/types"
	"github.com/google/objectfilter/utils"
)

// MembershipProtocol lets a host register a custom membership rule
// for types the built-in fast paths don't cover.
type MembershipProtocol interface {
	Applicable(a, b types.Any) bool
	Membership(ctx context.Context, a, b types.Any) bool
}

// MembershipDispatcher backs both Contains (spec.md §4.3: substring
// for strings, element membership for sequences) and the subset test
// InSet/NotInSet need. Eq is injected at construction so membership
// over composite elements can recurse through the same equality rule
// the rest of the engine uses.
type MembershipDispatcher struct {
	impl   []MembershipProtocol
	Eq     func(ctx context.Context, a, b types.Any) bool
	Logger Logger
}

func (d *MembershipDispatcher) AddImpl(elements ...MembershipProtocol) {
	d.impl = append(d.impl, elements...)
}

// Contains implements spec.md §4.3's Contains/NotContains: substring
// test when v is a string, element-wise equality membership when v is
// a sequence (eager or lazy — walked once, stopping at the first
// match rather than materialising).
func (d *MembershipDispatcher) Contains(ctx context.Context, v, literal types.Any) bool {
	if seq, ok := v.(types.Sequence); ok {
		for {
			elem, ok := seq.Next(ctx)
			if !ok {
				return false
			}
			if d.eq(ctx, elem, literal) {
				return true
			}
		}
	}

	if vs, ok := utils.ToString(v); ok {
		if ls, ok := utils.ToString(literal); ok {
			return strings.Contains(vs, ls)
		}
	}

	if isArray(v) {
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			if d.eq(ctx, rv.Index(i).Interface(), literal) {
				return true
			}
		}
		return false
	}

	for i, impl := range d.impl {
		if impl.Applicable(v, literal) {
			if d.Logger != nil {
				d.Logger.Trace("protocols: Membership dispatched to impl %d", i)
			}
			return impl.Membership(ctx, v, literal)
		}
	}

	if d.Logger != nil {
		d.Logger.Trace("protocols: no Membership implementation for %v (%T) and %v (%T)",
			v, v, literal, literal)
	}
	return false
}

// InSet implements spec.md §4.3's InSet subset semantics: an atomic v
// must be one of literal's elements; a sequence-valued v (including
// the empty sequence) must have every element be one of literal's
// elements — an empty v is therefore a subset of any literal,
// including an empty one.
func (d *MembershipDispatcher) InSet(ctx context.Context, v, literal types.Any) bool {
	lits, ok := toAnySlice(literal)
	if !ok {
		return false
	}

	if seq, ok := v.(types.Sequence); ok {
		for {
			elem, ok := seq.Next(ctx)
			if !ok {
				return true // exhausted without a miss: vacuous subset
			}
			if !d.memberOf(ctx, elem, lits) {
				return false
			}
		}
	}

	if isArray(v) {
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			if !d.memberOf(ctx, rv.Index(i).Interface(), lits) {
				return false
			}
		}
		return true
	}

	return d.memberOf(ctx, v, lits)
}

func (d *MembershipDispatcher) memberOf(ctx context.Context, v types.Any, lits []types.Any) bool {
	for _, lit := range lits {
		if d.eq(ctx, v, lit) {
			return true
		}
	}
	return false
}

func (d *MembershipDispatcher) eq(ctx context.Context, a, b types.Any) bool {
	if d.Eq != nil {
		return d.Eq(ctx, a, b)
	}
	return reflect.DeepEqual(a, b)
}

func toAnySlice(v types.Any) ([]types.Any, bool) {
	if vs, ok := v.([]types.Any); ok {
		return vs, true
	}
	if !isArray(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]types.Any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// _SubstringMembership is the built-in Applicable/Membership substring
// pair NewRegistry registers. Its Applicable accepts only values that
// utils.ToString converts (string, *string, []byte), which Contains'
// own fast path already handles first; other string-like types, such
// as a wrapper implementing Stringer, are not covered by it.
type _SubstringMembership struct{}

func (_SubstringMembership) Applicable(a, b types.Any) bool {
	_, aok := utils.ToString(a)
	_, bok := utils.ToString(b)
	return aok && bok
}

func (_SubstringMembership) Membership(_ context.Context, a, b types.Any) bool {
	as, _ := utils.ToString(a)
	bs, _ := utils.ToString(b)
	return strings.Contains(as, bs)
}
