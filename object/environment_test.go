package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildFrameResolvesDepthAndSlot(t *testing.T) {
	root := NewGlobal()
	child := NewChild(root, 2)
	child.Set(0, 0, &Int{Value: 1})
	child.Set(0, 1, &Int{Value: 2})

	grandchild := NewChild(child, 1)
	grandchild.Set(0, 0, &Int{Value: 3})

	assert.Equal(t, int64(3), grandchild.Get(0, 0).(*Int).Value)
	assert.Equal(t, int64(1), grandchild.Get(1, 0).(*Int).Value)
	assert.Equal(t, int64(2), grandchild.Get(1, 1).(*Int).Value)
}

func TestGrowAppendsAndReturnsIndex(t *testing.T) {
	e := NewChild(NewGlobal(), 0)
	i0 := e.Grow(&Int{Value: 10})
	i1 := e.Grow(&Int{Value: 20})
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, int64(20), e.Get(0, i1).(*Int).Value)
}

func TestGlobalDefineGetSetRoundTrip(t *testing.T) {
	g := NewGlobal()
	g.DefineGlobal("x", &Int{Value: 1})

	v, ok := g.GetGlobal("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.(*Int).Value)

	ok = g.SetGlobal("x", &Int{Value: 2})
	assert.True(t, ok)
	v, _ = g.GetGlobal("x")
	assert.Equal(t, int64(2), v.(*Int).Value)
}

func TestSetGlobalFailsForUndefinedName(t *testing.T) {
	g := NewGlobal()
	ok := g.SetGlobal("never-defined", &Int{Value: 1})
	assert.False(t, ok)
}

func TestChildEnvironmentSharesGlobalsWithParent(t *testing.T) {
	root := NewGlobal()
	root.DefineGlobal("shared", &Int{Value: 7})

	child := NewChild(root, 1)
	v, ok := child.GetGlobal("shared")
	require.True(t, ok)
	assert.Equal(t, int64(7), v.(*Int).Value)
	assert.Same(t, root, child.Global())
}
