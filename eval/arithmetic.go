/*
File    : raven/eval/arithmetic.go
Package : eval
*/
package eval

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/lexer"
	"github.com/mahrr/l-lang/object"
)

// binary evaluates a Binary node. `and`/`or` short-circuit and so must
// decide whether to evaluate the right operand before it is evaluated;
// every other operator evaluates both sides first.
func (ev *Evaluator) binary(e *ast.Binary, env *object.Environment) (object.Value, *signal, error) {
	if e.Op == lexer.AND || e.Op == lexer.OR {
		return ev.shortCircuit(e, env)
	}

	l, sig, err := ev.eval(e.L, env)
	if err != nil || sig != nil {
		return l, sig, err
	}
	r, sig, err := ev.eval(e.R, env)
	if err != nil || sig != nil {
		return r, sig, err
	}

	v, err := applyBinary(e.Op, l, r, e.Where().Line)
	return v, nil, err
}

func (ev *Evaluator) shortCircuit(e *ast.Binary, env *object.Environment) (object.Value, *signal, error) {
	l, sig, err := ev.eval(e.L, env)
	if err != nil || sig != nil {
		return l, sig, err
	}
	truthy := object.Truthy(l)
	if e.Op == lexer.AND && !truthy {
		return l, nil, nil
	}
	if e.Op == lexer.OR && truthy {
		return l, nil, nil
	}
	return ev.eval(e.R, env)
}

// applyBinary implements every non-short-circuiting binary operator. The
// bytecode VM does not call it; vm/arithmetic.go keeps its own copy of the
// same coercion rules for its opcodes.
func applyBinary(op lexer.Kind, l, r object.Value, line int) (object.Value, error) {
	switch op {
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return arith(op, l, r, line)
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		return compare(op, l, r, line)
	case lexer.EQ:
		return object.Of(object.Same(l, r)), nil
	case lexer.NE:
		return object.Of(!object.Same(l, r)), nil
	case lexer.PIPE:
		tail, ok := r.(*object.List)
		if !ok {
			return nil, fmt.Errorf("%d: '|' requires a list on the right, got %s", line, r.Type())
		}
		return object.Cons(l, tail), nil
	case lexer.AT:
		left, ok1 := l.(*object.List)
		right, ok2 := r.(*object.List)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%d: '@' requires lists on both sides", line)
		}
		return object.Concat(left, right), nil
	}
	return nil, fmt.Errorf("%d: unhandled binary operator %s", line, op)
}

func arith(op lexer.Kind, l, r object.Value, line int) (object.Value, error) {
	li, lIsInt := l.(*object.Int)
	ri, rIsInt := r.(*object.Int)
	if lIsInt && rIsInt {
		if op == lexer.SLASH {
			if ri.Value == 0 {
				return nil, fmt.Errorf("%d: division by zero", line)
			}
			return &object.Int{Value: li.Value / ri.Value}, nil
		}
		if op == lexer.PERCENT {
			if ri.Value == 0 {
				return nil, fmt.Errorf("%d: division by zero", line)
			}
			return &object.Int{Value: li.Value % ri.Value}, nil
		}
		switch op {
		case lexer.PLUS:
			return &object.Int{Value: li.Value + ri.Value}, nil
		case lexer.MINUS:
			return &object.Int{Value: li.Value - ri.Value}, nil
		case lexer.STAR:
			return &object.Int{Value: li.Value * ri.Value}, nil
		}
	}

	lf, lok := numberAsFloat(l)
	rf, rok := numberAsFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("%d: arithmetic requires numbers, got %s and %s", line, l.Type(), r.Type())
	}
	switch op {
	case lexer.PLUS:
		return &object.Float{Value: lf + rf}, nil
	case lexer.MINUS:
		return &object.Float{Value: lf - rf}, nil
	case lexer.STAR:
		return &object.Float{Value: lf * rf}, nil
	case lexer.SLASH:
		if rf == 0 {
			return nil, fmt.Errorf("%d: division by zero", line)
		}
		return &object.Float{Value: lf / rf}, nil
	case lexer.PERCENT:
		return nil, fmt.Errorf("%d: '%%' requires two ints", line)
	}
	return nil, fmt.Errorf("%d: unhandled arithmetic operator %s", line, op)
}

func compare(op lexer.Kind, l, r object.Value, line int) (object.Value, error) {
	// Strings compare lexicographically; numbers compare by value across
	// int/float.
	if ls, ok := l.(*object.String); ok {
		rs, ok := r.(*object.String)
		if !ok {
			return nil, fmt.Errorf("%d: cannot compare string with %s", line, r.Type())
		}
		return object.Of(stringCompare(op, ls.Value, rs.Value)), nil
	}
	lf, lok := numberAsFloat(l)
	rf, rok := numberAsFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("%d: comparison requires numbers or strings, got %s and %s", line, l.Type(), r.Type())
	}
	switch op {
	case lexer.LT:
		return object.Of(lf < rf), nil
	case lexer.LE:
		return object.Of(lf <= rf), nil
	case lexer.GT:
		return object.Of(lf > rf), nil
	case lexer.GE:
		return object.Of(lf >= rf), nil
	}
	return nil, fmt.Errorf("%d: unhandled comparison operator %s", line, op)
}

func stringCompare(op lexer.Kind, l, r string) bool {
	switch op {
	case lexer.LT:
		return l < r
	case lexer.LE:
		return l <= r
	case lexer.GT:
		return l > r
	case lexer.GE:
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
