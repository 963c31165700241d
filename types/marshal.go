package types

import "encoding/json"

// MarshalItem is the on-the-wire representation of one ast node: a
// type tag plus its JSON-encoded fields, so a parse tree can
// round-trip through JSON without losing which concrete node shell
// produced each branch (objectfilter/marshal).
type MarshalItem struct {
	Type    string          `json:"type"`
	Comment string          `json:"comment,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Marshaler is implemented by every ast node that can encode itself
// into a MarshalItem.
type Marshaler interface {
	Marshal() (*MarshalItem, error)
}
