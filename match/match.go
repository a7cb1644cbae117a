/*
File    : raven/match/match.go
Package : match
*/

// Package match implements Raven's pattern-matching contract (spec section
// 4.E): testing a pattern against a runtime value and, only on a full
// match, producing the bindings it introduces. Both the tree evaluator and
// the resolver walk patterns in the same left-to-right order this package
// uses — Ident binds immediately, ListPattern element by element, PairPattern
// head then tail, HashPattern in key-list order, ConstructorPattern element
// by element — so that compile-time slot numbers line up with the order
// Environment.Grow is called at runtime.
package match

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/object"
)

// Binding is one name bound by a successful match, in traversal order.
type Binding struct {
	Name  string
	Value object.Value
}

// EvalKey evaluates a hash pattern's bracketed key expression against the
// scope the match is running in. The match package has no evaluator of its
// own (the tree evaluator and the bytecode VM each have different ones),
// so callers hand in their own.
type EvalKey func(ast.Expr) (object.Value, error)

// Match reports whether p matches v, and on success returns the bindings p
// introduces, in canonical order. A failed match never returns partial
// bindings — the all-or-nothing guarantee spec 4.E requires.
func Match(p ast.Pattern, v object.Value, evalKey EvalKey) ([]Binding, bool, error) {
	var out []Binding
	ok, err := match(p, v, &out, evalKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return out, true, nil
}

func match(p ast.Pattern, v object.Value, out *[]Binding, evalKey EvalKey) (bool, error) {
	switch p := p.(type) {
	case *ast.IdentPattern:
		*out = append(*out, Binding{Name: p.Name, Value: v})
		return true, nil

	case *ast.IntPattern:
		iv, ok := v.(*object.Int)
		return ok && iv.Value == p.Value, nil

	case *ast.FloatPattern:
		fv, ok := v.(*object.Float)
		return ok && fv.Value == p.Value, nil

	case *ast.StringPattern:
		sv, ok := v.(*object.String)
		return ok && sv.Value == p.Value, nil

	case *ast.RawStringPattern:
		sv, ok := v.(*object.String)
		return ok && sv.Value == p.Value, nil

	case *ast.NilPattern:
		_, ok := v.(*object.Nil)
		return ok, nil

	case *ast.TruePattern:
		bv, ok := v.(*object.Bool)
		return ok && bv.Value, nil

	case *ast.FalsePattern:
		bv, ok := v.(*object.Bool)
		return ok && !bv.Value, nil

	case *ast.ListPattern:
		lv, ok := v.(*object.List)
		if !ok {
			return false, nil
		}
		if p.Tail == nil {
			if len(lv.Elements) != len(p.Elems) {
				return false, nil
			}
		} else if len(lv.Elements) < len(p.Elems) {
			return false, nil
		}
		for i, sub := range p.Elems {
			ok, err := match(sub, lv.Elements[i], out, evalKey)
			if err != nil || !ok {
				return false, err
			}
		}
		if p.Tail == nil {
			return true, nil
		}
		tail := &object.List{Elements: lv.Elements[len(p.Elems):]}
		return match(p.Tail, tail, out, evalKey)

	case *ast.PairPattern:
		lv, ok := v.(*object.List)
		if !ok || len(lv.Elements) == 0 {
			return false, nil
		}
		if ok, err := match(p.Head, lv.Elements[0], out, evalKey); err != nil || !ok {
			return false, err
		}
		tail := &object.List{Elements: lv.Elements[1:]}
		return match(p.Tail, tail, out, evalKey)

	case *ast.HashPattern:
		hv, ok := v.(*object.Hash)
		if !ok {
			return false, nil
		}
		for i, k := range p.Keys {
			key, err := hashKeyValue(k, evalKey)
			if err != nil {
				return false, err
			}
			val, found := hv.Get(key)
			if !found {
				return false, nil
			}
			if ok, err := match(p.Patts[i], val, out, evalKey); err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case *ast.ConstructorPattern:
		vv, ok := v.(*object.Variant)
		if !ok || vv.Cons.Name != p.Name || len(vv.Elems) != len(p.Elems) {
			return false, nil
		}
		for i, sub := range p.Elems {
			if ok, err := match(sub, vv.Elems[i], out, evalKey); err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("match: unhandled pattern %T", p)
}

func hashKeyValue(k ast.HashPatternKey, evalKey EvalKey) (object.Value, error) {
	switch k.Kind {
	case ast.HashSymbolKey:
		return &object.String{Value: k.Symbol}, nil
	case ast.HashIndexKey:
		return &object.Int{Value: int64(k.Index)}, nil
	case ast.HashExprKey:
		if evalKey == nil {
			return nil, fmt.Errorf("match: hash pattern has a computed key but no evaluator was supplied")
		}
		return evalKey(k.Expr)
	default:
		return nil, fmt.Errorf("match: unknown hash pattern key kind %d", k.Kind)
	}
}

// Declared collects, in canonical order, the names a pattern would bind
// without requiring a value to match against. The resolver uses this to
// count and name slots at compile time.
func Declared(p ast.Pattern) []string {
	var names []string
	declared(p, &names)
	return names
}

func declared(p ast.Pattern, names *[]string) {
	switch p := p.(type) {
	case *ast.IdentPattern:
		*names = append(*names, p.Name)
	case *ast.ListPattern:
		for _, sub := range p.Elems {
			declared(sub, names)
		}
		if p.Tail != nil {
			declared(p.Tail, names)
		}
	case *ast.PairPattern:
		declared(p.Head, names)
		declared(p.Tail, names)
	case *ast.HashPattern:
		for _, sub := range p.Patts {
			declared(sub, names)
		}
	case *ast.ConstructorPattern:
		for _, sub := range p.Elems {
			declared(sub, names)
		}
	}
}
