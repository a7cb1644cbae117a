/*
File    : raven/vm/arithmetic.go
Package : vm
*/
package vm

import (
	"fmt"

	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/object"
)

// applyBinary mirrors package eval's applyBinary opcode for opcode, so a
// program that compiles gets the same arithmetic, comparison, equality,
// cons, and concat results whether it runs tree-walked or compiled.
func applyBinary(op chunk.Op, l, r object.Value) (object.Value, error) {
	switch op {
	case chunk.OpAdd, chunk.OpSub, chunk.OpMul, chunk.OpDiv, chunk.OpMod:
		return arith(op, l, r)
	case chunk.OpLt, chunk.OpLtq, chunk.OpGt, chunk.OpGtq:
		return compare(op, l, r)
	case chunk.OpEq:
		return object.Of(object.Same(l, r)), nil
	case chunk.OpNeq:
		return object.Of(!object.Same(l, r)), nil
	case chunk.OpCons:
		tail, ok := r.(*object.List)
		if !ok {
			return nil, fmt.Errorf("'|' requires a list on the right, got %s", r.Type())
		}
		return object.Cons(l, tail), nil
	case chunk.OpConcat:
		left, ok1 := l.(*object.List)
		right, ok2 := r.(*object.List)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("'@' requires lists on both sides")
		}
		return object.Concat(left, right), nil
	}
	return nil, fmt.Errorf("unhandled binary opcode %d", op)
}

func arith(op chunk.Op, l, r object.Value) (object.Value, error) {
	li, lIsInt := l.(*object.Int)
	ri, rIsInt := r.(*object.Int)
	if lIsInt && rIsInt {
		switch op {
		case chunk.OpDiv:
			if ri.Value == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return &object.Int{Value: li.Value / ri.Value}, nil
		case chunk.OpMod:
			if ri.Value == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return &object.Int{Value: li.Value % ri.Value}, nil
		case chunk.OpAdd:
			return &object.Int{Value: li.Value + ri.Value}, nil
		case chunk.OpSub:
			return &object.Int{Value: li.Value - ri.Value}, nil
		case chunk.OpMul:
			return &object.Int{Value: li.Value * ri.Value}, nil
		}
	}

	lf, lok := numberAsFloat(l)
	rf, rok := numberAsFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("arithmetic requires numbers, got %s and %s", l.Type(), r.Type())
	}
	switch op {
	case chunk.OpAdd:
		return &object.Float{Value: lf + rf}, nil
	case chunk.OpSub:
		return &object.Float{Value: lf - rf}, nil
	case chunk.OpMul:
		return &object.Float{Value: lf * rf}, nil
	case chunk.OpDiv:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return &object.Float{Value: lf / rf}, nil
	case chunk.OpMod:
		return nil, fmt.Errorf("'%%' requires two ints")
	}
	return nil, fmt.Errorf("unhandled arithmetic opcode %d", op)
}

func compare(op chunk.Op, l, r object.Value) (object.Value, error) {
	if ls, ok := l.(*object.String); ok {
		rs, ok := r.(*object.String)
		if !ok {
			return nil, fmt.Errorf("cannot compare string with %s", r.Type())
		}
		return object.Of(stringCompare(op, ls.Value, rs.Value)), nil
	}
	lf, lok := numberAsFloat(l)
	rf, rok := numberAsFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("comparison requires numbers or strings, got %s and %s", l.Type(), r.Type())
	}
	switch op {
	case chunk.OpLt:
		return object.Of(lf < rf), nil
	case chunk.OpLtq:
		return object.Of(lf <= rf), nil
	case chunk.OpGt:
		return object.Of(lf > rf), nil
	case chunk.OpGtq:
		return object.Of(lf >= rf), nil
	}
	return nil, fmt.Errorf("unhandled comparison opcode %d", op)
}

func stringCompare(op chunk.Op, l, r string) bool {
	switch op {
	case chunk.OpLt:
		return l < r
	case chunk.OpLtq:
		return l <= r
	case chunk.OpGt:
		return l > r
	case chunk.OpGtq:
		return l >= r
	}
	return false
}

func numberAsFloat(v object.Value) (float64, bool) {
	switch n := v.(type) {
	case *object.Int:
		return float64(n.Value), true
	case *object.Float:
		return n.Value, true
	}
	return 0, false
}

func negate(v object.Value) (object.Value, error) {
	switch n := v.(type) {
	case *object.Int:
		return &object.Int{Value: -n.Value}, nil
	case *object.Float:
		return &object.Float{Value: -n.Value}, nil
	}
	return nil, fmt.Errorf("unary '-' requires a number, got %s", v.Type())
}

// indexGet mirrors package eval's indexValue.
func indexGet(x, idx object.Value) (object.Value, error) {
	switch c := x.(type) {
	case *object.List:
		i, ok := idx.(*object.Int)
		if !ok {
			return nil, fmt.Errorf("list index must be an int, got %s", idx.Type())
		}
		n := i.Value
		if n < 0 {
			n += int64(len(c.Elements))
		}
		if n < 0 || n >= int64(len(c.Elements)) {
			return nil, fmt.Errorf("list index %d out of range", i.Value)
		}
		return c.Elements[n], nil
	case *object.Hash:
		v, ok := c.Get(idx)
		if !ok {
			return object.NilValue, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("cannot index a value of type %s", x.Type())
	}
}

// indexSet mirrors package eval's Index-assignment case.
func indexSet(x, idx, v object.Value) error {
	switch c := x.(type) {
	case *object.List:
		i, ok := idx.(*object.Int)
		if !ok {
			return fmt.Errorf("list index must be an int, got %s", idx.Type())
		}
		n := i.Value
		if n < 0 {
			n += int64(len(c.Elements))
		}
		if n < 0 || n >= int64(len(c.Elements)) {
			return fmt.Errorf("list index %d out of range", i.Value)
		}
		c.Elements[n] = v
		return nil
	case *object.Hash:
		c.Set(idx, v)
		return nil
	default:
		return fmt.Errorf("cannot index-assign a value of type %s", x.Type())
	}
}
