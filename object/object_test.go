package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthyFalsyValues(t *testing.T) {
	assert.False(t, Truthy(NilValue))
	assert.False(t, Truthy(False))
	assert.True(t, Truthy(True))
	assert.True(t, Truthy(&Int{Value: 0}))
	assert.True(t, Truthy(&String{Value: ""}))
}

func TestOfReturnsCanonicalSingletons(t *testing.T) {
	assert.Same(t, True, Of(true))
	assert.Same(t, False, Of(false))
}

func TestEchoQuotesStringsOnly(t *testing.T) {
	assert.Equal(t, "'hi'", Echo(&String{Value: "hi"}))
	assert.Equal(t, "3", Echo(&Int{Value: 3}))
}

func TestConsPrependsWithoutMutatingTail(t *testing.T) {
	tail := &List{Elements: []Value{&Int{Value: 2}, &Int{Value: 3}}}
	got := Cons(&Int{Value: 1}, tail)
	assert.Len(t, got.Elements, 3)
	assert.Len(t, tail.Elements, 2, "tail must not be mutated")
	assert.Equal(t, int64(1), got.Elements[0].(*Int).Value)
}

func TestConcatProducesFreshList(t *testing.T) {
	left := &List{Elements: []Value{&Int{Value: 1}}}
	right := &List{Elements: []Value{&Int{Value: 2}}}
	got := Concat(left, right)
	assert.Len(t, got.Elements, 2)
	assert.Len(t, left.Elements, 1, "left must not be mutated")
}

func TestListStringUsesEchoForElements(t *testing.T) {
	l := &List{Elements: []Value{&String{Value: "a"}, &Int{Value: 1}}}
	assert.Equal(t, "['a', 1]", l.String())
}

func TestVariantStringMatchesConstructorShape(t *testing.T) {
	cons := &Constructor{TypeName: "Shape", Name: "Circle", Arity: 1}
	v := &Variant{Cons: cons, Elems: []Value{&Int{Value: 2}}}
	assert.Equal(t, "Circle(2)", v.String())
}

func TestSameComparesNumbersAndStringsByValue(t *testing.T) {
	assert.True(t, Same(&Int{Value: 1}, &Int{Value: 1}))
	assert.False(t, Same(&Int{Value: 1}, &Int{Value: 2}))
	assert.True(t, Same(&String{Value: "a"}, &String{Value: "a"}))
	assert.False(t, Same(&Int{Value: 1}, &Float{Value: 1}), "different types never compare equal")
}

func TestSameComparesListsByIdentity(t *testing.T) {
	a := &List{Elements: []Value{&Int{Value: 1}}}
	b := &List{Elements: []Value{&Int{Value: 1}}}
	assert.False(t, Same(a, b), "structurally equal lists are not the same identity")
	assert.True(t, Same(a, a))
}
