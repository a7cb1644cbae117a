package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahrr/l-lang/compiler"
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
	c := compiler.New(table)
	prog, err := c.CompileProgram(piece)
	require.NoError(t, err, "compile error")
	m := New()
	for name, v := range std.Builtins() {
		m.DefineGlobal(name, v)
	}
	v, err := m.Run(prog)
	require.NoError(t, err, "run error")
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	v := run(t, "1 + 2 * 3")
	i, ok := v.(*object.Int)
	require.True(t, ok, "expected *object.Int, got %T", v)
	assert.Equal(t, int64(7), i.Value)
}

func TestGlobalAssignmentPersistsAcrossCalls(t *testing.T) {
	src := `
let total = 0
fn bump()
  total = total + 1
  return total
end
bump()
bump()
bump()
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}

func TestClosureUpvalueClosesOverReturnedFrame(t *testing.T) {
	src := `
fn counter()
  let n = 0
  return fn()
    n = n + 1
    return n
  end
end
let c = counter()
c()
c()
c()
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value, "upvalue should keep reflecting n after counter() returned")
}

func TestIfElseSelectsBranch(t *testing.T) {
	v := run(t, `if 1 < 2 "yes" else "no" end`)
	s, ok := v.(*object.String)
	require.True(t, ok)
	assert.Equal(t, "yes", s.Value)
}

func TestWhileLoopAccumulates(t *testing.T) {
	src := `
let i = 0
let total = 0
while i < 5 do
  total = total + i
  i = i + 1
end
total
`
	v := run(t, src)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(10), i.Value)
}

func TestForLoopOverListUsesLenBuiltin(t *testing.T) {
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

func TestHashLiteralAndIndex(t *testing.T) {
	v := run(t, `let h = { a: 1, b: 2 }; h.a + h["b"]`)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(3), i.Value)
}

func TestConsAndConcat(t *testing.T) {
	v := run(t, `let a = 1 | [2, 3]; len(a @ [4])`)
	i, ok := v.(*object.Int)
	require.True(t, ok)
	assert.Equal(t, int64(4), i.Value)
}

func TestListPatternTailBindsRemainder(t *testing.T) {
	v := run(t, `let [a, b | t] = [1,2,3,4]; t`)
	l, ok := v.(*object.List)
	require.True(t, ok, "expected *object.List, got %T", v)
	require.Len(t, l.Elements, 2)
	assert.Equal(t, int64(3), l.Elements[0].(*object.Int).Value)
	assert.Equal(t, int64(4), l.Elements[1].(*object.Int).Value)
}

func TestAndOrShortCircuit(t *testing.T) {
	v := run(t, `false and (1/0 == 0)`)
	b, ok := v.(*object.Bool)
	require.True(t, ok)
	assert.False(t, b.Value)

	v = run(t, `true or (1/0 == 0)`)
	b, ok = v.(*object.Bool)
	require.True(t, ok)
	assert.True(t, b.Value)
}
