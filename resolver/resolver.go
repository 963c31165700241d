// Package resolver implements the Attribute Resolver and Value
// Expander (spec.md §4.1, §4.2): turning a dotted path and a
// heterogeneous host object into the lazy value groups the filter
// algebra matches against.
//
// The default resolution policy mirrors the teacher's
// protocols/protocol_associative.go DefaultAssociative: struct fields
// win over methods, lookups are case-folded, and a handful of host
// shapes (*ordereddict.Dict, nil pointers) are special-cased ahead of
// reflection.
package resolver

import (
	"context"
	"reflect"

	"github.com/Velocidex/ordereddict"
	"golang.org/x/text/cases"

	"github.com/google/objectfilter/types"
	"github.com/google/objectfilter/utils"
)

// Logger is the minimal ambient logging surface threaded through
// resolution, mirroring the teacher's scope.Log/scope.Trace split: Log
// always fires, Trace is for verbose diagnostics a host can discard.
type Logger interface {
	Log(format string, args ...interface{})
	Trace(format string, args ...interface{})
}

// Resolved is what one Resolve call yields for one host value and one
// member name (spec.md §4.1's "0..N values"):
//
//   - Present == false: the member does not exist, or resolved to a
//     bare callable the engine refuses to invoke. Contributes nothing.
//   - Present && !IsSeq: a single scalar or composite reading; Value
//     holds it.
//   - Present && IsSeq: the member's value is itself a sequence (a
//     host-side list, or a lazy single-pass generator); Seq holds it.
type Resolved struct {
	Present bool
	IsSeq   bool
	Value   types.Any
	Seq     types.Sequence
}

// AttributeResolver looks up one named member on one host value.
// Implementations must never panic; a host accessor that panics is
// equivalent to the member not existing.
type AttributeResolver interface {
	Resolve(ctx context.Context, v types.Any, name string) Resolved
}

// DefaultResolver is the reflection-based resolver spec.md §4.1
// describes as the default policy: case-insensitive by lowercase
// fold, struct fields before methods, first match in declaration
// order wins.
type DefaultResolver struct {
	// Fold normalises a name before comparison. Defaults to Unicode
	// case folding (golang.org/x/text/cases), a strict superset of
	// ASCII lower-casing.
	Fold func(string) string

	Logger Logger
}

var defaultFold = cases.Fold()

func NewDefaultResolver(logger Logger) *DefaultResolver {
	return &DefaultResolver{
		Fold:   func(s string) string { return defaultFold.String(s) },
		Logger: logger,
	}
}

func (r *DefaultResolver) fold(s string) string {
	if r.Fold != nil {
		return r.Fold(s)
	}
	return defaultFold.String(s)
}

func (r *DefaultResolver) Resolve(ctx context.Context, v types.Any, name string) (res Resolved) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.Logger != nil {
				r.Logger.Trace("resolver: panic reading %q off %T: %v", name, v, rec)
			}
			res = Resolved{}
		}
	}()

	if v == nil || types.IsNullObject(v) {
		return Resolved{}
	}

	folded := r.fold(name)

	if dict, ok := v.(*ordereddict.Dict); ok {
		return r.resolveDict(dict, folded)
	}

	rv := reflect.ValueOf(v)
	indirect := reflect.Indirect(rv)

	if indirect.IsValid() && indirect.Kind() == reflect.Struct {
		if field, ok := findField(indirect, folded, r.fold); ok {
			return classify(field)
		}
	}

	if rv.IsValid() {
		if m, ok := findMethod(rv, folded, r.fold); ok {
			out := m.Call(nil)
			if len(out) >= 1 {
				return classify(out[0])
			}
			return Resolved{}
		}
	}

	if r.Logger != nil {
		r.Logger.Trace("resolver: no member %q on %T", name, v)
	}
	return Resolved{}
}

func (r *DefaultResolver) resolveDict(dict *ordereddict.Dict, folded string) Resolved {
	for _, k := range dict.Keys() {
		if r.fold(k) != folded {
			continue
		}
		val, _ := dict.Get(k)
		if val == nil {
			return Resolved{Present: true, Value: types.Null{}}
		}
		return classify(reflect.ValueOf(val))
	}
	return Resolved{}
}

// findField walks exported struct fields in declaration order,
// returning the first whose name folds to match.
func findField(v reflect.Value, folded string, fold func(string) string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !utils.IsExported(f.Name) {
			continue
		}
		if fold(f.Name) == folded {
			return v.Field(i), true
		}
		if tag, ok := f.Tag.Lookup("json"); ok {
			name := tag
			for j := 0; j < len(tag); j++ {
				if tag[j] == ',' {
					name = tag[:j]
					break
				}
			}
			if name != "" && name != "-" && fold(name) == folded {
				return v.Field(i), true
			}
		}
	}
	return reflect.Value{}, false
}

// findMethod returns the first exported, zero-argument, single(+)
// return-value method whose name folds to match — the Go analogue of
// a Python @property getter.
func findMethod(v reflect.Value, folded string, fold func(string) string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !utils.IsExported(m.Name) {
			continue
		}
		if fold(m.Name) != folded {
			continue
		}
		method := v.Method(i)
		if utils.IsGetter(method, m.Name) {
			return method, true
		}
	}
	return reflect.Value{}, false
}

// classify turns one concrete reflect.Value into a Resolved, applying
// the scalar/sequence split spec.md §4.1 requires.
func classify(rv reflect.Value) Resolved {
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Resolved{Present: true, Value: types.Null{}}
		}
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return Resolved{Present: true, Value: types.Null{}}
	}

	switch rv.Kind() {
	case reflect.Func:
		// A bare function/method value with no bound invocation: the
		// engine refuses to call it (spec.md §4.1).
		return Resolved{}

	case reflect.Chan:
		return Resolved{Present: true, IsSeq: true, Seq: &reflectChanSeq{ch: rv}}

	case reflect.Slice, reflect.Array:
		return Resolved{Present: true, IsSeq: true, Seq: &reflectSliceSeq{rv: rv}}

	case reflect.Interface:
		return classify(rv.Elem())

	default:
		return Resolved{Present: true, Value: rv.Interface()}
	}
}

type reflectChanSeq struct {
	ch reflect.Value
}

func (s *reflectChanSeq) Next(ctx context.Context) (types.Any, bool) {
	chosen, recv, recvOK := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		{Dir: reflect.SelectRecv, Chan: s.ch},
	})
	if chosen == 0 || !recvOK {
		return nil, false
	}
	return recv.Interface(), true
}

type reflectSliceSeq struct {
	rv  reflect.Value
	pos int
}

func (s *reflectSliceSeq) Next(ctx context.Context) (types.Any, bool) {
	if s.pos >= s.rv.Len() {
		return nil, false
	}
	v := s.rv.Index(s.pos).Interface()
	s.pos++
	return v, true
}
