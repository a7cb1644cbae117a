/*
File    : raven/eval/eval.go
Package : eval
*/

// Package eval is the older of Raven's two execution strategies: direct,
// recursive evaluation of the resolved AST (spec section 2's path F). It
// shares the value model (package object) with the bytecode VM (package
// vm); the environment chain and the pattern matcher are used by this
// package only.
//
// Control flow (`return`, `break`, `continue`) is threaded as a signal
// value returned alongside every piece/statement evaluation, rather than
// Go panics: a signal set by a nested statement propagates up through
// enclosing pieces until a loop (break/continue) or a call frame (return)
// consumes it, then is cleared. This mirrors the "Mode" bits
// original_source's eval.c carries on its evaluation result.
package eval

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/lexer"
	"github.com/mahrr/l-lang/match"
	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/resolver"
)

type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
)

type signal struct {
	kind  signalKind
	value object.Value
}

// Evaluator walks a resolved AST, reading variable addresses from table.
type Evaluator struct {
	table resolver.Table
}

// New creates an Evaluator over the addresses a resolver.Resolve pass
// produced.
func New(table resolver.Table) *Evaluator {
	return &Evaluator{table: table}
}

// Run evaluates piece as a top-level program against env (normally the
// process-wide global environment) and returns the value of its last
// statement (void when that statement is not an expression), matching the
// REPL's "print the last result" behavior.
func (ev *Evaluator) Run(piece ast.Piece, env *object.Environment) (object.Value, error) {
	v, sig, err := ev.evalPiece(piece, env)
	if err != nil {
		return nil, err
	}
	if sig != nil && sig.kind == sigReturn {
		return sig.value, nil
	}
	return v, nil
}

func (ev *Evaluator) evalPiece(piece ast.Piece, env *object.Environment) (object.Value, *signal, error) {
	var last object.Value = object.VoidValue
	for _, s := range piece {
		v, sig, err := ev.evalStmt(s, env)
		if err != nil {
			return nil, nil, err
		}
		if sig != nil {
			return v, sig, nil
		}
		last = v
	}
	return last, nil, nil
}

func (ev *Evaluator) evalStmt(s ast.Stmt, env *object.Environment) (object.Value, *signal, error) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return ev.eval(s.X, env)

	case *ast.LetStmt:
		v, sig, err := ev.eval(s.Value, env)
		if err != nil || sig != nil {
			return v, sig, err
		}
		if err := ev.bind(s.Patt, v, env); err != nil {
			return nil, nil, err
		}
		return object.VoidValue, nil, nil

	case *ast.FnStmt:
		closure := &object.Closure{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
		ev.define(s, s.Name, closure, env)
		return object.VoidValue, nil, nil

	case *ast.ReturnStmt:
		var v object.Value = object.VoidValue
		if s.Value != nil {
			rv, sig, err := ev.eval(s.Value, env)
			if err != nil || sig != nil {
				return rv, sig, err
			}
			v = rv
		}
		return v, &signal{kind: sigReturn, value: v}, nil

	case *ast.BreakStmt:
		return object.VoidValue, &signal{kind: sigBreak}, nil

	case *ast.ContinueStmt:
		return object.VoidValue, &signal{kind: sigContinue}, nil

	case *ast.TypeStmt:
		for _, v := range s.Variants {
			cons := &object.Constructor{TypeName: s.Name, Name: v.Name, Arity: v.Arity}
			env.DefineGlobal(v.Name, cons)
		}
		return object.VoidValue, nil, nil

	default:
		return nil, nil, fmt.Errorf("%d: eval: unhandled statement %T", s.Where().Line, s)
	}
}

// define writes a binding for an identifier-declaring node, consulting the
// resolver's table for whether it is a global or a local slot.
func (ev *Evaluator) define(n ast.Node, name string, v object.Value, env *object.Environment) {
	addr := ev.table[n]
	if addr.Global {
		env.DefineGlobal(name, v)
		return
	}
	env.Grow(v)
}

// bind applies a pattern match's bindings to env, using match.Declared's
// canonical order so the slots line up with what the resolver counted.
func (ev *Evaluator) bind(p ast.Pattern, v object.Value, env *object.Environment) error {
	binds, ok, err := match.Match(p, v, func(e ast.Expr) (object.Value, error) {
		rv, sig, err := ev.eval(e, env)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return nil, fmt.Errorf("control flow is not allowed in a hash pattern key expression")
		}
		return rv, nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pattern match failed")
	}
	for _, b := range binds {
		ev.defineByName(p, b.Name, b.Value, env)
	}
	return nil
}

// defineByName looks up the Address the resolver recorded for the
// IdentPattern node that declared name; since match.Match doesn't expose
// which sub-pattern produced each binding, the resolver's table is keyed
// the same way (by the declaring node), so findIdentPattern re-walks
// the pattern tree in lockstep with match.Declared's order.
func (ev *Evaluator) defineByName(p ast.Pattern, name string, v object.Value, env *object.Environment) {
	node := findIdentPattern(p, name)
	if node == nil {
		env.DefineGlobal(name, v)
		return
	}
	ev.define(node, name, v, env)
}

// findIdentPattern returns the first IdentPattern named name encountered
// in canonical traversal order.
func findIdentPattern(p ast.Pattern, name string) *ast.IdentPattern {
	switch p := p.(type) {
	case *ast.IdentPattern:
		if p.Name == name {
			return p
		}
	case *ast.ListPattern:
		for _, sub := range p.Elems {
			if n := findIdentPattern(sub, name); n != nil {
				return n
			}
		}
		if p.Tail != nil {
			if n := findIdentPattern(p.Tail, name); n != nil {
				return n
			}
		}
	case *ast.PairPattern:
		if n := findIdentPattern(p.Head, name); n != nil {
			return n
		}
		return findIdentPattern(p.Tail, name)
	case *ast.HashPattern:
		for _, sub := range p.Patts {
			if n := findIdentPattern(sub, name); n != nil {
				return n
			}
		}
	case *ast.ConstructorPattern:
		for _, sub := range p.Elems {
			if n := findIdentPattern(sub, name); n != nil {
				return n
			}
		}
	}
	return nil
}

func (ev *Evaluator) eval(e ast.Expr, env *object.Environment) (object.Value, *signal, error) {
	switch e := e.(type) {
	case *ast.Ident:
		return ev.lookup(e, e.Name, env)

	case *ast.IntLit:
		return &object.Int{Value: e.Value}, nil, nil
	case *ast.FloatLit:
		return &object.Float{Value: e.Value}, nil, nil
	case *ast.StringLit:
		return &object.String{Value: e.Value}, nil, nil
	case *ast.RawStringLit:
		return &object.String{Value: e.Value}, nil, nil
	case *ast.BoolLit:
		return object.Of(e.Value), nil, nil
	case *ast.NilLit:
		return object.NilValue, nil, nil

	case *ast.ListLit:
		elems := make([]object.Value, len(e.Elems))
		for i, el := range e.Elems {
			v, sig, err := ev.eval(el, env)
			if err != nil || sig != nil {
				return v, sig, err
			}
			elems[i] = v
		}
		return &object.List{Elements: elems}, nil, nil

	case *ast.HashLit:
		h := object.NewHash()
		for i, k := range e.Keys {
			var key object.Value
			if k.Kind == ast.ExprKey {
				kv, sig, err := ev.eval(k.Expr, env)
				if err != nil || sig != nil {
					return kv, sig, err
				}
				key = kv
			} else {
				key = &object.String{Value: k.Symbol}
			}
			v, sig, err := ev.eval(e.Values[i], env)
			if err != nil || sig != nil {
				return v, sig, err
			}
			h.Set(key, v)
		}
		return h, nil, nil

	case *ast.FnLit:
		return &object.Closure{Params: e.Params, Body: e.Body, Env: env}, nil, nil

	case *ast.Group:
		return ev.eval(e.X, env)

	case *ast.Unary:
		return ev.unary(e, env)

	case *ast.Binary:
		return ev.binary(e, env)

	case *ast.Call:
		return ev.call(e, env)

	case *ast.Index:
		return ev.index(e, env)

	case *ast.Access:
		return ev.access(e, env)

	case *ast.If:
		return ev.ifExpr(e, env)

	case *ast.While:
		return ev.whileExpr(e, env)

	case *ast.For:
		return ev.forExpr(e, env)

	case *ast.Cond:
		return ev.condExpr(e, env)

	case *ast.Match:
		return ev.matchExpr(e, env)

	case *ast.Assign:
		return ev.assign(e, env)

	default:
		return nil, nil, fmt.Errorf("%d: eval: unhandled expression %T", e.Where().Line, e)
	}
}

func (ev *Evaluator) lookup(n ast.Node, name string, env *object.Environment) (object.Value, *signal, error) {
	addr := ev.table[n]
	if addr.Global {
		v, ok := env.GetGlobal(name)
		if !ok {
			return nil, nil, fmt.Errorf("undefined name '%s'", name)
		}
		return v, nil, nil
	}
	return env.Get(addr.Depth, addr.Slot), nil, nil
}

func (ev *Evaluator) unary(e *ast.Unary, env *object.Environment) (object.Value, *signal, error) {
	v, sig, err := ev.eval(e.X, env)
	if err != nil || sig != nil {
		return v, sig, err
	}
	switch e.Op {
	case lexer.MINUS:
		switch n := v.(type) {
		case *object.Int:
			return &object.Int{Value: -n.Value}, nil, nil
		case *object.Float:
			return &object.Float{Value: -n.Value}, nil, nil
		}
		return nil, nil, fmt.Errorf("unary '-' requires a number, got %s", v.Type())
	case lexer.NOT:
		return object.Of(!object.Truthy(v)), nil, nil
	}
	return nil, nil, fmt.Errorf("unhandled unary operator %s", e.Op)
}

func (ev *Evaluator) whileExpr(e *ast.While, env *object.Environment) (object.Value, *signal, error) {
	for {
		cond, sig, err := ev.eval(e.Cond, env)
		if err != nil || sig != nil {
			return cond, sig, err
		}
		if !object.Truthy(cond) {
			return object.VoidValue, nil, nil
		}
		_, sig, err = ev.evalPiece(e.Body, env)
		if err != nil {
			return nil, nil, err
		}
		if sig != nil {
			switch sig.kind {
			case sigBreak:
				return object.VoidValue, nil, nil
			case sigContinue:
				continue
			default:
				return object.VoidValue, sig, nil
			}
		}
	}
}

func (ev *Evaluator) forExpr(e *ast.For, env *object.Environment) (object.Value, *signal, error) {
	iter, sig, err := ev.eval(e.Iter, env)
	if err != nil || sig != nil {
		return iter, sig, err
	}
	step := func(v object.Value) (*signal, error) {
		if err := ev.bind(e.Patt, v, env); err != nil {
			return nil, err
		}
		_, sig, err := ev.evalPiece(e.Body, env)
		return sig, err
	}
	switch it := iter.(type) {
	case *object.List:
		for _, el := range it.Elements {
			sig, err := step(el)
			if err != nil {
				return nil, nil, err
			}
			if sig != nil {
				if sig.kind == sigBreak {
					break
				}
				if sig.kind != sigContinue {
					return object.VoidValue, sig, nil
				}
			}
		}
	case *object.Hash:
		var outerSig *signal
		var outerErr error
		it.Each(func(k, v object.Value) {
			if outerSig != nil || outerErr != nil {
				return
			}
			pair := &object.List{Elements: []object.Value{k, v}}
			sig, err := step(pair)
			if err != nil {
				outerErr = err
				return
			}
			if sig != nil && sig.kind != sigContinue {
				outerSig = sig
			}
		})
		if outerErr != nil {
			return nil, nil, outerErr
		}
		if outerSig != nil && outerSig.kind != sigBreak {
			return object.VoidValue, outerSig, nil
		}
	default:
		return nil, nil, fmt.Errorf("'for' requires a list or hash, got %s", iter.Type())
	}
	return object.VoidValue, nil, nil
}

func (ev *Evaluator) ifExpr(e *ast.If, env *object.Environment) (object.Value, *signal, error) {
	cond, sig, err := ev.eval(e.Cond, env)
	if err != nil || sig != nil {
		return cond, sig, err
	}
	if object.Truthy(cond) {
		return ev.evalPiece(e.Then, env)
	}
	for _, el := range e.Elifs {
		cond, sig, err := ev.eval(el.Cond, env)
		if err != nil || sig != nil {
			return cond, sig, err
		}
		if object.Truthy(cond) {
			return ev.evalPiece(el.Then, env)
		}
	}
	if e.Else != nil {
		return ev.evalPiece(e.Else, env)
	}
	return object.VoidValue, nil, nil
}

func (ev *Evaluator) condExpr(e *ast.Cond, env *object.Environment) (object.Value, *signal, error) {
	for _, arm := range e.Arms {
		cond, sig, err := ev.eval(arm.Cond, env)
		if err != nil || sig != nil {
			return cond, sig, err
		}
		if object.Truthy(cond) {
			return ev.evalPiece(ast.Piece(arm.Body), env)
		}
	}
	return object.VoidValue, nil, nil
}

func (ev *Evaluator) matchExpr(e *ast.Match, env *object.Environment) (object.Value, *signal, error) {
	v, sig, err := ev.eval(e.Value, env)
	if err != nil || sig != nil {
		return v, sig, err
	}
	for _, c := range e.Cases {
		binds, ok, err := match.Match(c.Patt, v, func(ex ast.Expr) (object.Value, error) {
			rv, sig, err := ev.eval(ex, env)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				return nil, fmt.Errorf("control flow is not allowed in a hash pattern key expression")
			}
			return rv, nil
		})
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		for _, b := range binds {
			ev.defineByName(c.Patt, b.Name, b.Value, env)
		}
		return ev.evalPiece(ast.Piece(c.Body), env)
	}
	return nil, nil, fmt.Errorf("%d: no match case matched the value", e.Where().Line)
}

func (ev *Evaluator) call(e *ast.Call, env *object.Environment) (object.Value, *signal, error) {
	fn, sig, err := ev.eval(e.Fn, env)
	if err != nil || sig != nil {
		return fn, sig, err
	}
	args := make([]object.Value, len(e.Args))
	for i, a := range e.Args {
		v, sig, err := ev.eval(a, env)
		if err != nil || sig != nil {
			return v, sig, err
		}
		args[i] = v
	}
	switch f := fn.(type) {
	case *object.Closure:
		if len(args) != len(f.Params) {
			return nil, nil, fmt.Errorf("%d: function arity mismatch: want %d, got %d", e.Where().Line, len(f.Params), len(args))
		}
		frame := object.NewChild(f.Env, 0)
		for i, p := range f.Params {
			if err := ev.bind(p, args[i], frame); err != nil {
				return nil, nil, err
			}
		}
		v, sig, err := ev.evalPiece(f.Body, frame)
		if err != nil {
			return nil, nil, err
		}
		if sig != nil && sig.kind == sigReturn {
			return sig.value, nil, nil
		}
		return v, nil, nil

	case *object.Builtin:
		if f.Arity >= 0 && len(args) != f.Arity {
			return nil, nil, fmt.Errorf("%d: function arity mismatch: want %d, got %d", e.Where().Line, f.Arity, len(args))
		}
		v, err := f.Fn(args)
		return v, nil, err

	case *object.Constructor:
		if len(args) != f.Arity {
			return nil, nil, fmt.Errorf("%d: constructor arity mismatch: want %d, got %d", e.Where().Line, f.Arity, len(args))
		}
		return &object.Variant{Cons: f, Elems: args}, nil, nil

	default:
		return nil, nil, fmt.Errorf("%d: cannot call a value of type %s", e.Where().Line, fn.Type())
	}
}

func (ev *Evaluator) index(e *ast.Index, env *object.Environment) (object.Value, *signal, error) {
	x, sig, err := ev.eval(e.X, env)
	if err != nil || sig != nil {
		return x, sig, err
	}
	idx, sig, err := ev.eval(e.Idx, env)
	if err != nil || sig != nil {
		return idx, sig, err
	}
	return indexValue(x, idx, e.Where().Line)
}

func indexValue(x, idx object.Value, line int) (object.Value, *signal, error) {
	switch c := x.(type) {
	case *object.List:
		i, ok := idx.(*object.Int)
		if !ok {
			return nil, nil, fmt.Errorf("%d: list index must be an int, got %s", line, idx.Type())
		}
		n := i.Value
		if n < 0 {
			n += int64(len(c.Elements))
		}
		if n < 0 || n >= int64(len(c.Elements)) {
			return nil, nil, fmt.Errorf("%d: list index %d out of range", line, i.Value)
		}
		return c.Elements[n], nil, nil
	case *object.Hash:
		v, ok := c.Get(idx)
		if !ok {
			return object.NilValue, nil, nil
		}
		return v, nil, nil
	default:
		return nil, nil, fmt.Errorf("%d: cannot index a value of type %s", line, x.Type())
	}
}

func (ev *Evaluator) access(e *ast.Access, env *object.Environment) (object.Value, *signal, error) {
	x, sig, err := ev.eval(e.X, env)
	if err != nil || sig != nil {
		return x, sig, err
	}
	h, ok := x.(*object.Hash)
	if !ok {
		return nil, nil, fmt.Errorf("%d: cannot access field '%s' of a value of type %s", e.Where().Line, e.Field, x.Type())
	}
	v, ok := h.Get(&object.String{Value: e.Field})
	if !ok {
		return object.NilValue, nil, nil
	}
	return v, nil, nil
}

func (ev *Evaluator) assign(e *ast.Assign, env *object.Environment) (object.Value, *signal, error) {
	v, sig, err := ev.eval(e.Value, env)
	if err != nil || sig != nil {
		return v, sig, err
	}
	switch target := e.Target.(type) {
	case *ast.Ident:
		addr := ev.table[target]
		if addr.Global {
			if !env.SetGlobal(target.Name, v) {
				return nil, nil, fmt.Errorf("%d: assignment to undefined global '%s'", e.Where().Line, target.Name)
			}
			return v, nil, nil
		}
		env.Set(addr.Depth, addr.Slot, v)
		return v, nil, nil

	case *ast.Index:
		x, sig, err := ev.eval(target.X, env)
		if err != nil || sig != nil {
			return x, sig, err
		}
		idx, sig, err := ev.eval(target.Idx, env)
		if err != nil || sig != nil {
			return idx, sig, err
		}
		switch c := x.(type) {
		case *object.List:
			i, ok := idx.(*object.Int)
			if !ok {
				return nil, nil, fmt.Errorf("%d: list index must be an int, got %s", e.Where().Line, idx.Type())
			}
			n := i.Value
			if n < 0 {
				n += int64(len(c.Elements))
			}
			if n < 0 || n >= int64(len(c.Elements)) {
				return nil, nil, fmt.Errorf("%d: list index %d out of range", e.Where().Line, i.Value)
			}
			c.Elements[n] = v
		case *object.Hash:
			c.Set(idx, v)
		default:
			return nil, nil, fmt.Errorf("%d: cannot index-assign a value of type %s", e.Where().Line, x.Type())
		}
		return v, nil, nil

	case *ast.Access:
		x, sig, err := ev.eval(target.X, env)
		if err != nil || sig != nil {
			return x, sig, err
		}
		h, ok := x.(*object.Hash)
		if !ok {
			return nil, nil, fmt.Errorf("%d: cannot assign field '%s' of a value of type %s", e.Where().Line, target.Field, x.Type())
		}
		h.Set(&object.String{Value: target.Field}, v)
		return v, nil, nil

	default:
		return nil, nil, fmt.Errorf("%d: invalid assignment target %T", e.Where().Line, e.Target)
	}
}
