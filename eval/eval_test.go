package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/parser"
	"github.com/mahrr/l-lang/resolver"
	"github.com/mahrr/l-lang/std"
)

func run(t *testing.T, src string) object.Value {
	t.Helper()
	piece, errs := parser.ParseProgram(src, "test")
	require.Empty(t, errs, "parse errors")
	table, err := resolver.Resolve(piece)
	require.NoError(t, err, "resolve error")
	ev := New(table)
	env := object.NewGlobal()
	std.Install(env)
	v, err := ev.Run(piece, env)
	require.NoError(t, err, "eval error")
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	v := run(t, "1 + 2 * 3")
	i, ok := v.(*object.Int)
	require.True(t, ok, "expected *object.Int, got %T", v)
	assert.Equal(t, int64(7), i.Value)
}

func TestClosureCapturesByReference(t *testing.T) {
	src := `
let counter = fn()
  let n = 0
  let bump = fn()
    n = n + 1
    return n
  end
  return bump
end
let c = counter()
c()
c()
c()
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}

func TestMatchListDestructure(t *testing.T) {
	v := run(t, `match [1,2] do case [x, y] -> x + y case z -> 0 end`)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}

func TestLetListPatternTailBindsRemainder(t *testing.T) {
	v := run(t, `let [a, b | t] = [1,2,3,4]; t`)
	l, ok := v.(*object.List)
	require.True(t, ok, "expected *object.List, got %T", v)
	require.Len(t, l.Elements, 2)
	assert.Equal(t, int64(3), l.Elements[0].(*object.Int).Value)
	assert.Equal(t, int64(4), l.Elements[1].(*object.Int).Value)
}

func TestCondFirstTrueArmWins(t *testing.T) {
	v := run(t, `cond do 1 < 2 -> "yes" true -> "no" end`)
	s, ok := v.(*object.String)
	require.True(t, ok)
	assert.Equal(t, "yes", s.Value)
}

func TestForOverListAccumulates(t *testing.T) {
	src := `
let total = 0
for x in [1,2,3,4] do
  total = total + x
end
total
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(10), i.Value)
}

func TestBreakStopsLoop(t *testing.T) {
	src := `
let total = 0
for x in [1,2,3,4,5] do
  if x > 3
    break
  end
  total = total + x
end
total
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(6), i.Value)
}

func TestRecursiveFunction(t *testing.T) {
	src := `
fn fact(n)
  if n == 0
    return 1
  end
  return n * fact(n - 1)
end
fact(5)
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(120), i.Value)
}

func TestConstructorAndMatch(t *testing.T) {
	src := `
type Shape = Circle(r) | Square(s)
let a = Circle(2)
match a do
  case Circle(r) -> r * r
  case Square(s) -> s * s
end
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(4), i.Value)
}

func TestHashLiteralAccessAndIndex(t *testing.T) {
	v := run(t, `let h = { a: 1, b: 2 }; h.a + h["b"]`)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}

func TestForOverHashYieldsPairs(t *testing.T) {
	src := `
let h = { a: 1, b: 2 }
let total = 0
for p in h do
  total = total + p[1]
end
total
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}

func TestStdLenBuiltin(t *testing.T) {
	v := run(t, `len([1,2,3])`)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}
