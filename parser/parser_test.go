package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahrr/l-lang/ast"
)

func mustParse(t *testing.T, src string) ast.Piece {
	t.Helper()
	piece, errs := ParseProgram(src, "test")
	require.Empty(t, errs, "unexpected parse errors for %q", src)
	return piece
}

func TestPrecedenceArithmetic(t *testing.T) {
	piece := mustParse(t, "1 + 2 * 3")
	es := piece[0].(*ast.ExprStmt)
	bin := es.X.(*ast.Binary)
	assert.Equal(t, "+", string(bin.Op))
	rhs := bin.R.(*ast.Binary)
	assert.Equal(t, "*", string(rhs.Op))
}

func TestAssignIsRightAssociative(t *testing.T) {
	piece := mustParse(t, "a = b = 1")
	es := piece[0].(*ast.ExprStmt)
	outer := es.X.(*ast.Assign)
	_, ok := outer.Target.(*ast.Ident)
	require.True(t, ok, "expected ident target, got %T", outer.Target)
	inner, ok := outer.Value.(*ast.Assign)
	require.True(t, ok, "expected nested assign, got %T", outer.Value)
	assert.Equal(t, "b", inner.Target.(*ast.Ident).Name)
}

func TestConsIsRightAssociative(t *testing.T) {
	piece := mustParse(t, "1 | 2 | []")
	es := piece[0].(*ast.ExprStmt)
	outer := es.X.(*ast.Binary)
	assert.Equal(t, "|", string(outer.Op))
	inner, ok := outer.R.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "|", string(inner.Op))
}

func TestIfElifElse(t *testing.T) {
	src := `
if a
  1
elif b
  2
else
  3
end
`
	piece := mustParse(t, src)
	es := piece[0].(*ast.ExprStmt)
	ifExpr := es.X.(*ast.If)
	assert.Len(t, ifExpr.Elifs, 1)
	assert.NotNil(t, ifExpr.Else)
}

func TestMatchWithListAndWildcard(t *testing.T) {
	src := `match [1,2] do case [x, y] -> x + y case _ -> 0 end`
	piece := mustParse(t, src)
	es := piece[0].(*ast.ExprStmt)
	m := es.X.(*ast.Match)
	require.Len(t, m.Cases, 2)
	_, ok := m.Cases[0].Patt.(*ast.ListPattern)
	assert.True(t, ok, "expected list pattern, got %T", m.Cases[0].Patt)
}

func TestListPatternWithTail(t *testing.T) {
	src := `let [a, b | t] = [1,2,3,4]`
	piece := mustParse(t, src)
	let := piece[0].(*ast.LetStmt)
	lp, ok := let.Patt.(*ast.ListPattern)
	require.True(t, ok, "expected list pattern, got %T", let.Patt)
	assert.Len(t, lp.Elems, 2)
	require.NotNil(t, lp.Tail)
	_, ok = lp.Tail.(*ast.IdentPattern)
	assert.True(t, ok, "expected ident tail, got %T", lp.Tail)
}

func TestCondWithElse(t *testing.T) {
	src := `cond do 1 < 2 -> "yes" else -> "no" end`
	piece := mustParse(t, src)
	es := piece[0].(*ast.ExprStmt)
	c := es.X.(*ast.Cond)
	assert.Len(t, c.Arms, 2)
}

func TestFunctionLiteralAndCall(t *testing.T) {
	src := `let add = fn(a, b) return a + b end
add(1, 2)`
	piece := mustParse(t, src)
	require.Len(t, piece, 2)
	let := piece[0].(*ast.LetStmt)
	_, ok := let.Value.(*ast.FnLit)
	assert.True(t, ok, "expected fn literal, got %T", let.Value)
	call := piece[1].(*ast.ExprStmt).X.(*ast.Call)
	assert.Len(t, call.Args, 2)
}

func TestPairPattern(t *testing.T) {
	src := `let (h | t) = [1,2,3]`
	piece := mustParse(t, src)
	let := piece[0].(*ast.LetStmt)
	pair, ok := let.Patt.(*ast.PairPattern)
	require.True(t, ok, "expected pair pattern, got %T", let.Patt)
	_, ok = pair.Head.(*ast.IdentPattern)
	assert.True(t, ok, "expected ident head, got %T", pair.Head)
}

func TestTypeDeclaration(t *testing.T) {
	src := `type Shape = Circle(r) | Square(s) | Point`
	piece := mustParse(t, src)
	ts := piece[0].(*ast.TypeStmt)
	require.Len(t, ts.Variants, 3)
	assert.Equal(t, 1, ts.Variants[0].Arity)
	assert.Equal(t, 0, ts.Variants[2].Arity)
}

func TestHashLiteralWithComputedKey(t *testing.T) {
	src := `{ name: "a", [1 + 1]: "b" }`
	piece := mustParse(t, src)
	h := piece[0].(*ast.ExprStmt).X.(*ast.HashLit)
	require.Len(t, h.Keys, 2)
	assert.Equal(t, ast.SymbolKey, h.Keys[0].Kind)
	assert.Equal(t, ast.ExprKey, h.Keys[1].Kind)
}
