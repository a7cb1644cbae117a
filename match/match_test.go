package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/object"
)

func TestMatchIdentAlwaysBinds(t *testing.T) {
	p := &ast.IdentPattern{Name: "x"}
	binds, ok, err := Match(p, &object.Int{Value: 7}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, binds, 1)
	assert.Equal(t, "x", binds[0].Name)
}

func TestMatchListExactLength(t *testing.T) {
	p := &ast.ListPattern{Elems: []ast.Pattern{
		&ast.IdentPattern{Name: "a"},
		&ast.IdentPattern{Name: "b"},
	}}
	v := &object.List{Elements: []object.Value{&object.Int{Value: 1}, &object.Int{Value: 2}}}
	binds, ok, err := Match(p, v, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, binds, 2)

	short := &object.List{Elements: []object.Value{&object.Int{Value: 1}}}
	_, ok, _ = Match(p, short, nil)
	assert.False(t, ok, "expected length mismatch to fail")
}

func TestMatchListWithTailBindsRemainder(t *testing.T) {
	p := &ast.ListPattern{
		Elems: []ast.Pattern{
			&ast.IdentPattern{Name: "a"},
			&ast.IdentPattern{Name: "b"},
		},
		Tail: &ast.IdentPattern{Name: "t"},
	}
	v := &object.List{Elements: []object.Value{
		&object.Int{Value: 1}, &object.Int{Value: 2}, &object.Int{Value: 3}, &object.Int{Value: 4},
	}}
	binds, ok, err := Match(p, v, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, binds, 3)
	tail := binds[2].Value.(*object.List)
	assert.Len(t, tail.Elements, 2)
	assert.Equal(t, int64(3), tail.Elements[0].(*object.Int).Value)
	assert.Equal(t, int64(4), tail.Elements[1].(*object.Int).Value)

	short := &object.List{Elements: []object.Value{&object.Int{Value: 1}}}
	_, ok, _ = Match(p, short, nil)
	assert.False(t, ok, "expected shorter-than-prefix list to fail")
}

func TestMatchPairRequiresNonEmpty(t *testing.T) {
	p := &ast.PairPattern{Head: &ast.IdentPattern{Name: "h"}, Tail: &ast.IdentPattern{Name: "t"}}
	empty := &object.List{}
	_, ok, _ := Match(p, empty, nil)
	assert.False(t, ok, "expected empty list to fail pair pattern")

	v := &object.List{Elements: []object.Value{&object.Int{Value: 1}, &object.Int{Value: 2}, &object.Int{Value: 3}}}
	binds, ok, err := Match(p, v, nil)
	require.NoError(t, err)
	require.True(t, ok)
	tail := binds[1].Value.(*object.List)
	assert.Len(t, tail.Elements, 2)
}

func TestMatchIsAllOrNothing(t *testing.T) {
	p := &ast.ListPattern{Elems: []ast.Pattern{
		&ast.IdentPattern{Name: "a"},
		&ast.IntPattern{Value: 99},
	}}
	v := &object.List{Elements: []object.Value{&object.Int{Value: 1}, &object.Int{Value: 2}}}
	binds, ok, err := Match(p, v, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, binds, "expected no partial bindings on failed match")
}

func TestMatchConstructor(t *testing.T) {
	cons := &object.Constructor{TypeName: "Shape", Name: "Circle", Arity: 1}
	v := &object.Variant{Cons: cons, Elems: []object.Value{&object.Float{Value: 2.5}}}
	p := &ast.ConstructorPattern{Name: "Circle", Elems: []ast.Pattern{&ast.IdentPattern{Name: "r"}}}
	binds, ok, err := Match(p, v, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r", binds[0].Name)

	wrong := &ast.ConstructorPattern{Name: "Square", Elems: []ast.Pattern{&ast.IdentPattern{Name: "s"}}}
	_, ok, _ = Match(wrong, v, nil)
	assert.False(t, ok, "expected constructor name mismatch to fail")
}

func TestDeclaredOrderMatchesTraversal(t *testing.T) {
	p := &ast.PairPattern{
		Head: &ast.IdentPattern{Name: "h"},
		Tail: &ast.ListPattern{Elems: []ast.Pattern{
			&ast.IdentPattern{Name: "x"},
			&ast.IdentPattern{Name: "y"},
		}},
	}
	names := Declared(p)
	assert.Equal(t, []string{"h", "x", "y"}, names)
}
