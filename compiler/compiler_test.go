package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/objectfilter/ast"
	"github.com/google/objectfilter/filters"
	"github.com/google/objectfilter/protocols"
	"github.com/google/objectfilter/resolver"
)

type fileObj struct {
	Name string
	Size int
}

func newCompiler() *Compiler {
	r := resolver.NewDefaultResolver(nil)
	e := resolver.NewExpander(r)
	reg := protocols.NewRegistry(nil)
	return New(e, reg)
}

func strLit(s string) ast.Literal    { return ast.Literal{Kind: ast.LitString, Str: s} }
func numLit(n float64) ast.Literal   { return ast.Literal{Kind: ast.LitNumber, Num: n} }

func TestCompileBinaryEq(t *testing.T) {
	c := newCompiler()
	node, err := c.Compile(&ast.BinaryExpr{Path: []string{"name"}, Op: "==", Literal: strLit("yay.exe")})
	require.NoError(t, err)

	assert.True(t, node.Matches(context.Background(), &fileObj{Name: "yay.exe"}))
	assert.False(t, node.Matches(context.Background(), &fileObj{Name: "other.exe"}))
	assert.Equal(t, "name == 'yay.exe'", node.ToString())
}

func TestCompileBinaryLtAndGe(t *testing.T) {
	c := newCompiler()
	lt, err := c.Compile(&ast.BinaryExpr{Path: []string{"size"}, Op: "<", Literal: numLit(11)})
	require.NoError(t, err)
	assert.True(t, lt.Matches(context.Background(), &fileObj{Size: 5}))
	assert.False(t, lt.Matches(context.Background(), &fileObj{Size: 11}))

	ge, err := c.Compile(&ast.BinaryExpr{Path: []string{"size"}, Op: ">=", Literal: numLit(11)})
	require.NoError(t, err)
	assert.True(t, ge.Matches(context.Background(), &fileObj{Size: 11}))
	assert.True(t, ge.Matches(context.Background(), &fileObj{Size: 12}))
	assert.False(t, ge.Matches(context.Background(), &fileObj{Size: 10}))
}

func TestCompileBinaryNotEq(t *testing.T) {
	c := newCompiler()
	node, err := c.Compile(&ast.BinaryExpr{Path: []string{"name"}, Op: "isnot", Literal: strLit("yay.exe")})
	require.NoError(t, err)
	assert.False(t, node.Matches(context.Background(), &fileObj{Name: "yay.exe"}))
	assert.True(t, node.Matches(context.Background(), &fileObj{Name: "other.exe"}))
}

func TestCompileAndOrNot(t *testing.T) {
	c := newCompiler()
	and := &ast.AndExpr{Operands: []ast.Node{
		&ast.BinaryExpr{Path: []string{"name"}, Op: "==", Literal: strLit("yay.exe")},
		&ast.BinaryExpr{Path: []string{"size"}, Op: "<", Literal: numLit(100)},
	}}
	node, err := c.Compile(and)
	require.NoError(t, err)
	_, isAnd := node.(*filters.And)
	assert.True(t, isAnd)
	assert.True(t, node.Matches(context.Background(), &fileObj{Name: "yay.exe", Size: 5}))
	assert.False(t, node.Matches(context.Background(), &fileObj{Name: "yay.exe", Size: 500}))

	not := &ast.NotExpr{Operand: and}
	notNode, err := c.Compile(not)
	require.NoError(t, err)
	assert.False(t, notNode.Matches(context.Background(), &fileObj{Name: "yay.exe", Size: 5}))
}

func TestCompileContext(t *testing.T) {
	c := newCompiler()
	ctxExpr := &ast.ContextExpr{
		Path: []string{"name"},
		Operand: &ast.BinaryExpr{Path: []string{"name"}, Op: "==", Literal: strLit("x")},
	}
	node, err := c.Compile(ctxExpr)
	require.NoError(t, err)
	_, isCtx := node.(*filters.Context)
	assert.True(t, isCtx)
}

func TestCompileEmptyAndOrErrors(t *testing.T) {
	c := newCompiler()

	_, err := c.Compile(&ast.AndExpr{})
	require.Error(t, err)
	var n *InvalidNumberOfOperands
	assert.ErrorAs(t, err, &n)

	_, err = c.Compile(&ast.OrExpr{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &n)
}

func TestCompileUnknownOperator(t *testing.T) {
	c := newCompiler()
	_, err := c.Compile(&ast.BinaryExpr{Path: []string{"name"}, Op: "frobnicate", Literal: strLit("x")})
	require.Error(t, err)
	var unknown *UnknownOperator
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "frobnicate", unknown.Op)
}

func TestCompileBadRegexErrorsEagerly(t *testing.T) {
	c := newCompiler()
	_, err := c.Compile(&ast.BinaryExpr{Path: []string{"name"}, Op: "regexp", Literal: strLit("(unclosed")})
	require.Error(t, err)
	var bad *BadRegex
	assert.ErrorAs(t, err, &bad)
}

func TestCompileValidRegexMatches(t *testing.T) {
	c := newCompiler()
	node, err := c.Compile(&ast.BinaryExpr{Path: []string{"name"}, Op: "regexp", Literal: strLit("^yay")})
	require.NoError(t, err)
	assert.True(t, node.Matches(context.Background(), &fileObj{Name: "yay.exe"}))
	assert.False(t, node.Matches(context.Background(), &fileObj{Name: "nope.exe"}))
}

func TestAddImplementationOverridesOperator(t *testing.T) {
	c := newCompiler()
	c.AddImplementation("==", func(r *protocols.Registry) filters.Operation {
		return func(ctx context.Context, v, literal interface{}) bool { return true }
	})
	node, err := c.Compile(&ast.BinaryExpr{Path: []string{"name"}, Op: "==", Literal: strLit("nonsense")})
	require.NoError(t, err)
	assert.True(t, node.Matches(context.Background(), &fileObj{Name: "anything"}))
}
