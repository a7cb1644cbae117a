package std

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahrr/l-lang/object"
)

func TestBuiltinsReturnsExpectedNames(t *testing.T) {
	b := Builtins()
	for _, name := range []string{"print", "println", "len", "str", "type", "int", "float"} {
		_, ok := b[name]
		assert.True(t, ok, "expected builtin %q", name)
	}
}

func TestInstallDefinesGlobalsOnEnvironment(t *testing.T) {
	env := object.NewGlobal()
	Install(env)
	v, ok := env.GetGlobal("len")
	require.True(t, ok)
	_, ok = v.(*object.Builtin)
	assert.True(t, ok)
}

func TestLenAcceptsListStringAndHash(t *testing.T) {
	n, err := biLen([]object.Value{&object.List{Elements: []object.Value{&object.Int{Value: 1}, &object.Int{Value: 2}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.(*object.Int).Value)

	n, err = biLen([]object.Value{&object.String{Value: "abc"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n.(*object.Int).Value)

	h := object.NewHash()
	h.Set(&object.String{Value: "k"}, object.True)
	n, err = biLen([]object.Value{h})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.(*object.Int).Value)
}

func TestLenRejectsUnsizedValue(t *testing.T) {
	_, err := biLen([]object.Value{&object.Int{Value: 1}})
	assert.Error(t, err)
}

func TestTypeReturnsTypeName(t *testing.T) {
	v, err := biType([]object.Value{&object.Int{Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, "int", v.(*object.String).Value)
}

func TestStrRendersUnquoted(t *testing.T) {
	v, err := biStr([]object.Value{&object.String{Value: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hi", v.(*object.String).Value)
}

func TestIntConvertsFloatAndString(t *testing.T) {
	v, err := biInt([]object.Value{&object.Float{Value: 3.9}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.(*object.Int).Value)

	v, err = biInt([]object.Value{&object.String{Value: "42"}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.(*object.Int).Value)

	_, err = biInt([]object.Value{&object.String{Value: "nope"}})
	assert.Error(t, err)
}

func TestFloatConvertsIntAndString(t *testing.T) {
	v, err := biFloat([]object.Value{&object.Int{Value: 3}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.(*object.Float).Value)

	v, err = biFloat([]object.Value{&object.String{Value: "2.5"}})
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.(*object.Float).Value)
}
