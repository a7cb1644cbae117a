package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSetGetAcrossKeyKinds(t *testing.T) {
	h := NewHash()
	h.Set(&Int{Value: 1}, &String{Value: "one"})
	h.Set(&Float{Value: 1.5}, &String{Value: "one-half"})
	h.Set(&String{Value: "k"}, &Int{Value: 42})

	v, ok := h.Get(&Int{Value: 1})
	require.True(t, ok)
	assert.Equal(t, "one", v.(*String).Value)

	v, ok = h.Get(&Float{Value: 1.5})
	require.True(t, ok)
	assert.Equal(t, "one-half", v.(*String).Value)

	v, ok = h.Get(&String{Value: "k"})
	require.True(t, ok)
	assert.Equal(t, int64(42), v.(*Int).Value)

	_, ok = h.Get(&String{Value: "missing"})
	assert.False(t, ok)
}

func TestHashSetOverwritesExistingKeyWithoutGrowingLen(t *testing.T) {
	h := NewHash()
	h.Set(&String{Value: "k"}, &Int{Value: 1})
	h.Set(&String{Value: "k"}, &Int{Value: 2})
	assert.Equal(t, 1, h.Len())

	v, _ := h.Get(&String{Value: "k"})
	assert.Equal(t, int64(2), v.(*Int).Value)
}

func TestHashLenCountsAcrossAllSubTables(t *testing.T) {
	h := NewHash()
	h.Set(&Int{Value: 1}, True)
	h.Set(&Float{Value: 2.0}, True)
	h.Set(&String{Value: "s"}, True)
	h.Set(NilValue, True)
	assert.Equal(t, 4, h.Len())
}

func TestHashEachVisitsInInsertionOrder(t *testing.T) {
	h := NewHash()
	h.Set(&String{Value: "b"}, &Int{Value: 2})
	h.Set(&String{Value: "a"}, &Int{Value: 1})
	h.Set(&String{Value: "c"}, &Int{Value: 3})

	var keys []string
	h.Each(func(k, v Value) {
		keys = append(keys, k.(*String).Value)
	})
	assert.Equal(t, []string{"b", "a", "c"}, keys)
}

func TestHashIdentitySubTableDistinguishesEqualLookingKeys(t *testing.T) {
	h := NewHash()
	a := &List{Elements: []Value{&Int{Value: 1}}}
	b := &List{Elements: []Value{&Int{Value: 1}}}
	h.Set(a, &String{Value: "a"})

	_, ok := h.Get(b)
	assert.False(t, ok, "structurally equal list keys are distinct identities")

	v, ok := h.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", v.(*String).Value)
}
