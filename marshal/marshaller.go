// Package marshal (de)serializes an objectfilter/ast parse tree to
// JSON, so a host program can persist or cache a parsed-but-uncompiled
// query — e.g. a precompiled rule set loaded once at startup and
// reused across many Compile calls — without re-scanning the query
// text each time. Grounded on the teacher's marshal/marshaller.go +
// unmarshal.go MarshalItem{Type, Comment, Data} envelope.
package marshal

import (
	"encoding/json"
	"fmt"

	"github.com/google/objectfilter/types"
)

// Marshal encodes any ast node that implements types.Marshaler
// (BinaryExpr, AndExpr, OrExpr, NotExpr, ContextExpr) into its wire
// envelope. An ast.Literal on its own does not implement it and is
// rejected.
func Marshal(item interface{}) (*types.MarshalItem, error) {
	m, ok := item.(types.Marshaler)
	if !ok {
		return nil, fmt.Errorf("marshal: %T does not implement types.Marshaler", item)
	}
	return m.Marshal()
}

// MarshalJSON is a convenience wrapper returning the envelope already
// flattened to bytes.
func MarshalJSON(item interface{}) ([]byte, error) {
	envelope, err := Marshal(item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope)
}
