package types

// Null is returned wherever the engine needs to distinguish "the
// member is present but empty" from Go's nil, which forces callers to
// special-case pointer dereferences. Missing members contribute no
// values; a member that is present but holds nil (a nil pointer, or a
// nil ordereddict value) resolves to Null, which the protocols treat
// as a null sentinel.
type Null struct{}

func (self Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (self Null) String() string {
	return "Null"
}

func IsNullObject(a interface{}) bool {
	if a == nil {
		return true
	}

	switch a.(type) {
	case Null, *Null:
		return true
	default:
		return false
	}
}

func IsNil(a interface{}) bool {
	return a == nil
}
