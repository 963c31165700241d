package marshal

import (
	"encoding/json"
	"fmt"

	"github.com/google/objectfilter/ast"
	"github.com/google/objectfilter/types"
)

// Unmarshaller decodes a MarshalItem tree back into ast.Node values.
// Unlike the teacher's generic, host-extensible Unmarshaller (which
// dispatches through a Handlers map of arbitrary type tags, since VQL
// values can be almost anything), our wire format only ever contains
// the five fixed ast node shapes, so the dispatch is a closed switch
// rather than a registry.
type Unmarshaller struct{}

func NewUnmarshaller() *Unmarshaller { return &Unmarshaller{} }

// UnmarshalNode reconstructs one ast.Node from its MarshalItem.
func (u *Unmarshaller) UnmarshalNode(item *types.MarshalItem) (ast.Node, error) {
	switch item.Type {
	case "BinaryExpr":
		var w struct {
			Path    []string    `json:"path"`
			Op      string      `json:"op"`
			Literal ast.Literal `json:"literal"`
		}
		if err := json.Unmarshal(item.Data, &w); err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Path: w.Path, Op: w.Op, Literal: w.Literal}, nil

	case "And", "Or":
		var w struct {
			Operands []types.MarshalItem `json:"operands"`
		}
		if err := json.Unmarshal(item.Data, &w); err != nil {
			return nil, err
		}
		operands := make([]ast.Node, 0, len(w.Operands))
		for _, sub := range w.Operands {
			sub := sub
			node, err := u.UnmarshalNode(&sub)
			if err != nil {
				return nil, err
			}
			operands = append(operands, node)
		}
		if item.Type == "And" {
			return &ast.AndExpr{Operands: operands}, nil
		}
		return &ast.OrExpr{Operands: operands}, nil

	case "Not":
		var w struct {
			Operand types.MarshalItem `json:"operand"`
		}
		if err := json.Unmarshal(item.Data, &w); err != nil {
			return nil, err
		}
		operand, err := u.UnmarshalNode(&w.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{Operand: operand}, nil

	case "Context":
		var w struct {
			Path    []string          `json:"path"`
			Operand types.MarshalItem `json:"operand"`
		}
		if err := json.Unmarshal(item.Data, &w); err != nil {
			return nil, err
		}
		operand, err := u.UnmarshalNode(&w.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.ContextExpr{Path: w.Path, Operand: operand}, nil

	default:
		return nil, fmt.Errorf("marshal: unknown node type %q", item.Type)
	}
}
