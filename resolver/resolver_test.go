package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahrr/l-lang/ast"
)

func TestGlobalLetIsGlobal(t *testing.T) {
	letStmt := &ast.LetStmt{
		Patt:  &ast.IdentPattern{Name: "x"},
		Value: &ast.IntLit{Value: 1},
	}
	table, err := Resolve(ast.Piece{letStmt})
	require.NoError(t, err)
	assert.True(t, table[letStmt.Patt].Global)
}

func TestFunctionLocalsGetSlots(t *testing.T) {
	paramPatt := &ast.IdentPattern{Name: "n"}
	ref := &ast.Ident{Name: "n"}
	fn := &ast.FnStmt{
		Name:   "id",
		Params: []ast.Pattern{paramPatt},
		Body:   ast.Piece{&ast.ReturnStmt{Value: ref}},
	}
	table, err := Resolve(ast.Piece{fn})
	require.NoError(t, err)

	assert.True(t, table[fn].Global, "expected fn name to be global at top level")

	paramAddr := table[paramPatt]
	assert.False(t, paramAddr.Global)
	assert.Equal(t, 0, paramAddr.Slot)

	refAddr := table[ref]
	assert.False(t, refAddr.Global)
	assert.Equal(t, 0, refAddr.Depth)
	assert.Equal(t, 0, refAddr.Slot)
}

func TestNestedClosureCapturesOuterLocal(t *testing.T) {
	outerParam := &ast.IdentPattern{Name: "x"}
	innerRef := &ast.Ident{Name: "x"}
	inner := &ast.FnLit{Body: ast.Piece{&ast.ReturnStmt{Value: innerRef}}}
	outer := &ast.FnStmt{
		Name:   "make",
		Params: []ast.Pattern{outerParam},
		Body:   ast.Piece{&ast.ReturnStmt{Value: inner}},
	}
	table, err := Resolve(ast.Piece{outer})
	require.NoError(t, err)

	refAddr := table[innerRef]
	assert.False(t, refAddr.Global)
	assert.Equal(t, 1, refAddr.Depth)
	assert.Equal(t, 0, refAddr.Slot)
}

func TestBlockShadowing(t *testing.T) {
	outerDecl := &ast.IdentPattern{Name: "x"}
	innerDecl := &ast.IdentPattern{Name: "x"}
	innerRef := &ast.Ident{Name: "x"}
	afterRef := &ast.Ident{Name: "x"}

	fn := &ast.FnStmt{
		Name: "f",
		Body: ast.Piece{
			&ast.LetStmt{Patt: outerDecl, Value: &ast.IntLit{Value: 1}},
			&ast.ExprStmt{X: &ast.If{
				Cond: &ast.BoolLit{Value: true},
				Then: ast.Piece{
					&ast.LetStmt{Patt: innerDecl, Value: &ast.IntLit{Value: 2}},
					&ast.ExprStmt{X: innerRef},
				},
			}},
			&ast.ExprStmt{X: afterRef},
		},
	}
	table, err := Resolve(ast.Piece{fn})
	require.NoError(t, err)

	assert.Equal(t, table[innerDecl].Slot, table[innerRef].Slot,
		"inner reference should resolve to inner declaration")
	assert.Equal(t, table[outerDecl].Slot, table[afterRef].Slot,
		"reference after the block should resolve back to the outer declaration")
	assert.NotEqual(t, table[outerDecl].Slot, table[innerDecl].Slot,
		"shadowing declaration should get a distinct slot")
}

func TestSelfReferentialLetIsUndefinedLocal(t *testing.T) {
	ref := &ast.Ident{Name: "x"}
	fn := &ast.FnStmt{
		Name: "f",
		Body: ast.Piece{
			&ast.LetStmt{Patt: &ast.IdentPattern{Name: "x"}, Value: ref},
		},
	}
	_, err := Resolve(ast.Piece{fn})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined local")
}

func TestRedefiningLocalInSameBlockFails(t *testing.T) {
	fn := &ast.FnStmt{
		Name: "f",
		Body: ast.Piece{
			&ast.LetStmt{Patt: &ast.IdentPattern{Name: "x"}, Value: &ast.IntLit{Value: 1}},
			&ast.LetStmt{Patt: &ast.IdentPattern{Name: "x"}, Value: &ast.IntLit{Value: 2}},
		},
	}
	_, err := Resolve(ast.Piece{fn})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redefining a local")
}

func TestReturnOutsideFunctionFails(t *testing.T) {
	ret := &ast.ReturnStmt{Value: &ast.IntLit{Value: 1}}
	_, err := Resolve(ast.Piece{ret})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "return outside function")
}
