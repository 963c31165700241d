package ast

import (
	"encoding/json"
	"fmt"

	"github.com/google/objectfilter/types"
)

// Each node implements types.Marshaler so objectfilter/marshal can
// serialise a parsed-but-uncompiled tree to JSON (e.g. a host
// precompiling a rule set at startup and caching the parse trees),
// grounded on the teacher's marshal/marshaller.go MarshalItem{Type,
// Data} envelope.

type wireBinaryExpr struct {
	Path    []string `json:"path"`
	Op      string   `json:"op"`
	Literal Literal  `json:"literal"`
}

func (b *BinaryExpr) Marshal() (*types.MarshalItem, error) {
	data, err := json.Marshal(wireBinaryExpr{Path: b.Path, Op: b.Op, Literal: b.Literal})
	if err != nil {
		return nil, err
	}
	return &types.MarshalItem{Type: "BinaryExpr", Data: data}, nil
}

type wireNary struct {
	Operands []types.MarshalItem `json:"operands"`
}

func (e *AndExpr) Marshal() (*types.MarshalItem, error) {
	return marshalNary("And", e.Operands)
}

func (e *OrExpr) Marshal() (*types.MarshalItem, error) {
	return marshalNary("Or", e.Operands)
}

func marshalNary(tag string, operands []Node) (*types.MarshalItem, error) {
	items := make([]types.MarshalItem, 0, len(operands))
	for _, o := range operands {
		m, ok := o.(types.Marshaler)
		if !ok {
			return nil, fmt.Errorf("ast: %T does not implement Marshaler", o)
		}
		item, err := m.Marshal()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	data, err := json.Marshal(wireNary{Operands: items})
	if err != nil {
		return nil, err
	}
	return &types.MarshalItem{Type: tag, Data: data}, nil
}

type wireUnary struct {
	Operand types.MarshalItem `json:"operand"`
}

func (e *NotExpr) Marshal() (*types.MarshalItem, error) {
	item, err := marshalChild(e.Operand)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(wireUnary{Operand: *item})
	if err != nil {
		return nil, err
	}
	return &types.MarshalItem{Type: "Not", Data: data}, nil
}

type wireContext struct {
	Path    []string          `json:"path"`
	Operand types.MarshalItem `json:"operand"`
}

func (e *ContextExpr) Marshal() (*types.MarshalItem, error) {
	item, err := marshalChild(e.Operand)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(wireContext{Path: e.Path, Operand: *item})
	if err != nil {
		return nil, err
	}
	return &types.MarshalItem{Type: "Context", Data: data}, nil
}

func marshalChild(n Node) (*types.MarshalItem, error) {
	m, ok := n.(types.Marshaler)
	if !ok {
		return nil, fmt.Errorf("ast: %T does not implement Marshaler", n)
	}
	return m.Marshal()
}
