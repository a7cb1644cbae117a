/*
File    : raven/resolver/resolver.go
Package : resolver
*/

// Package resolver performs the static scope analysis spec section 4.D
// describes: every identifier reference is tagged, ahead of time, with
// either "this name is a global" or "walk Depth enclosing function frames
// and read Slot" — so neither the tree evaluator nor the bytecode compiler
// ever has to search an environment chain by name at run time.
//
// Only function bodies (fn statements, fn literals, and the implicit
// top-level piece) own a runtime frame; `if`/`while`/`for`/`cond`/`match`
// blocks share their enclosing function's frame and only affect which
// names are visible while resolving, mirroring the single-CallFrame-per-
// function model original_source's bytecode VM uses. Within a function,
// nested blocks still shadow correctly: a `let x` inside an `if` body
// hides an outer `x` until the block ends, via a stack of block scopes.
package resolver

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/lexer"
	"github.com/mahrr/l-lang/match"
)

// Address is what a resolved identifier reference carries forward: either
// a global (looked up by name at run time) or a local/upvalue reference
// (Depth frames up from the current one, at Slot).
type Address struct {
	Global bool
	Depth  int
	Slot   int
}

// FrameKey looks up how many local slots a function body needs in Table,
// keyed by the node that introduces the function (an *ast.FnLit, an
// *ast.FnStmt, or TopLevel for the implicit program function). The
// bytecode compiler uses this to size a frame and to hand out slots for
// its own bookkeeping (e.g. a compiled `for` loop's hidden index) past
// every slot the resolver already assigned.
type FrameKey struct{ Node ast.Node }

func (k FrameKey) Where() lexer.Token { return k.Node.Where() }

type topLevelMarker struct{}

func (topLevelMarker) Where() lexer.Token { return lexer.Token{} }

// TopLevel is the FrameKey node identifying the implicit top-level program
// function.
var TopLevel ast.Node = topLevelMarker{}

// Table maps every resolved Ident, Assign target, and pattern-introduced
// binding to its Address. Nodes are plain struct pointers, so Go's
// interface equality compares them by identity — exactly the keying this
// table needs.
type Table map[ast.Node]Address

// localBinding tracks both where a local lives (its slot) and whether it
// has finished being declared yet: spec 4.D's two-pass scheme records a
// name as soon as a `let`/`fn`/pattern binding starts, then marks it
// *defined* only once its initializer has been resolved, so a reference
// caught mid-declaration (a variable used in its own initializer) is
// observably different from one resolved after.
type localBinding struct {
	slot    int
	defined bool
}

type blockScope struct {
	names  map[string]*localBinding
	parent *blockScope
}

type funcScope struct {
	blocks   *blockScope
	nextSlot int
	parent   *funcScope
}

func (f *funcScope) pushBlock() {
	f.blocks = &blockScope{names: make(map[string]*localBinding), parent: f.blocks}
}

func (f *funcScope) popBlock() {
	f.blocks = f.blocks.parent
}

// declare introduces name in the current (innermost) block of f as not yet
// defined, returning its slot and whether name was already bound in that
// SAME block — redefining a local in the same scope is a resolve error
// (spec 4.D); the caller still gets a usable slot back so resolution can
// continue and report further errors in one pass.
func (f *funcScope) declare(name string) (slot int, redefined bool) {
	_, redefined = f.blocks.names[name]
	slot = f.nextSlot
	f.nextSlot++
	f.blocks.names[name] = &localBinding{slot: slot}
	return slot, redefined
}

// markDefined flags name, in the innermost block that declares it, as
// having finished initializing.
func (f *funcScope) markDefined(name string) {
	for b := f.blocks; b != nil; b = b.parent {
		if info, found := b.names[name]; found {
			info.defined = true
			return
		}
	}
}

// lookup searches f's block chain, then its enclosing functions, counting
// how many function frames were crossed. ok is false for an unresolved
// name, which the caller treats as a global. defined is only meaningful
// when ok is true: false means name is mid-declaration at the point of
// this reference (reading a local in its own initializer).
func (f *funcScope) lookup(name string) (depth, slot int, ok, defined bool) {
	depth = 0
	for fn := f; fn != nil; fn = fn.parent {
		for b := fn.blocks; b != nil; b = b.parent {
			if info, found := b.names[name]; found {
				return depth, info.slot, true, info.defined
			}
		}
		depth++
	}
	return 0, 0, false, false
}

// Resolver walks a parsed program and builds its Table.
type Resolver struct {
	fn     *funcScope
	table  Table
	errors []error
}

// New creates a resolver ready to resolve a top-level program.
func New() *Resolver {
	return &Resolver{table: make(Table)}
}

// Resolve walks piece as a top-level program (an implicit outermost
// function whose locals are instead globals) and returns the completed
// table, or the first error encountered.
func Resolve(piece ast.Piece) (Table, error) {
	r := New()
	r.fn = &funcScope{}
	r.fn.pushBlock()
	r.piece(piece)
	r.table[FrameKey{TopLevel}] = Address{Slot: r.fn.nextSlot}
	r.fn.popBlock()
	if len(r.errors) > 0 {
		return nil, r.errors[0]
	}
	return r.table, nil
}

func (r *Resolver) fail(n ast.Node, format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Errorf("%d: %s", n.Where().Line, fmt.Sprintf(format, args...)))
}

func (r *Resolver) piece(p ast.Piece) {
	for _, s := range p {
		r.stmt(s)
	}
}

// topLevel reports whether the current function scope is the implicit
// program scope, i.e. bindings declared here are globals rather than slots.
func (r *Resolver) topLevel() bool {
	return r.fn.parent == nil
}

// declareName declares and immediately defines name: the right shape for a
// binding that is usable as soon as it exists (a function's own name for
// direct recursion, parameters, a `for` loop variable, a `match` case
// pattern), as opposed to `let`, whose initializer resolves before the
// name becomes visible (see declareNamePending below).
func (r *Resolver) declareName(n ast.Node, name string) {
	if r.topLevel() {
		r.table[n] = Address{Global: true}
		return
	}
	slot, redefined := r.fn.declare(name)
	if redefined {
		r.fail(n, "redefining a local in the same scope: %s", name)
	}
	r.fn.markDefined(name)
	r.table[n] = Address{Depth: 0, Slot: slot}
}

// declareNamePending declares name but leaves it undefined; the caller
// must follow up with defineName once its initializer has been resolved.
func (r *Resolver) declareNamePending(n ast.Node, name string) {
	if r.topLevel() {
		r.table[n] = Address{Global: true}
		return
	}
	slot, redefined := r.fn.declare(name)
	if redefined {
		r.fail(n, "redefining a local in the same scope: %s", name)
	}
	r.table[n] = Address{Depth: 0, Slot: slot}
}

func (r *Resolver) defineName(name string) {
	if r.topLevel() {
		return
	}
	r.fn.markDefined(name)
}

// declarePattern declares every name p binds, immediately defined (see
// declareName).
func (r *Resolver) declarePattern(p ast.Pattern) {
	r.patternAddresses(p, false)
}

// declareLetPattern declares every name p binds as pending, for `let`'s
// two-pass scheme: callers must resolve the initializer, then call
// definePattern(p) to mark the bindings defined.
func (r *Resolver) declareLetPattern(p ast.Pattern) {
	r.patternAddresses(p, true)
}

func (r *Resolver) definePattern(p ast.Pattern) {
	for _, name := range match.Declared(p) {
		r.defineName(name)
	}
}

// patternAddresses walks p in the canonical order match.Declared uses,
// declaring each IdentPattern and recording its Address under the
// IdentPattern node itself. pending selects declareName vs
// declareNamePending for every IdentPattern encountered.
func (r *Resolver) patternAddresses(p ast.Pattern, pending bool) {
	declare := r.declareName
	if pending {
		declare = r.declareNamePending
	}
	switch p := p.(type) {
	case *ast.IdentPattern:
		declare(p, p.Name)
	case *ast.ListPattern:
		for _, sub := range p.Elems {
			r.patternAddresses(sub, pending)
		}
		if p.Tail != nil {
			r.patternAddresses(p.Tail, pending)
		}
	case *ast.PairPattern:
		r.patternAddresses(p.Head, pending)
		r.patternAddresses(p.Tail, pending)
	case *ast.HashPattern:
		for _, k := range p.Keys {
			if k.Kind == ast.HashExprKey {
				r.expr(k.Expr)
			}
		}
		for _, sub := range p.Patts {
			r.patternAddresses(sub, pending)
		}
	case *ast.ConstructorPattern:
		for _, sub := range p.Elems {
			r.patternAddresses(sub, pending)
		}
	}
}

func (r *Resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		r.expr(s.X)

	case *ast.LetStmt:
		r.declareLetPattern(s.Patt)
		r.expr(s.Value)
		r.definePattern(s.Patt)

	case *ast.FnStmt:
		// Declare the name before the body resolves, so direct recursion
		// by name reads a consistent slot (spec 4.D).
		r.declareName(s, s.Name)
		r.enterFunction(s, func() {
			for _, p := range s.Params {
				r.declarePattern(p)
			}
			r.piece(s.Body)
		})

	case *ast.ReturnStmt:
		if r.topLevel() {
			r.fail(s, "return outside function")
		}
		if s.Value != nil {
			r.expr(s.Value)
		}

	case *ast.BreakStmt, *ast.ContinueStmt:
		// no bindings, nothing to resolve

	case *ast.TypeStmt:
		for _, v := range s.Variants {
			r.table[constructorKey{s, v.Name}] = Address{Global: true}
		}

	default:
		r.fail(s, "resolver: unhandled statement %T", s)
	}
}

// constructorKey disambiguates the several constructor addresses a single
// TypeStmt can introduce; it is never looked up by the evaluator directly
// (constructors are bound by name like any other global), but recording it
// keeps every declaration passing through the same table.
type constructorKey struct {
	stmt *ast.TypeStmt
	name string
}

func (k constructorKey) Where() lexer.Token { return k.stmt.Where() }

func (r *Resolver) enterFunction(node ast.Node, body func()) {
	r.fn = &funcScope{parent: r.fn}
	r.fn.pushBlock()
	body()
	r.table[FrameKey{node}] = Address{Slot: r.fn.nextSlot}
	r.fn.popBlock()
	r.fn = r.fn.parent
}

func (r *Resolver) block(p ast.Piece) {
	r.fn.pushBlock()
	r.piece(p)
	r.fn.popBlock()
}

func (r *Resolver) arm(a ast.Arm) {
	r.block(ast.Piece(a))
}

func (r *Resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		r.resolveRef(e, e.Name)

	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.RawStringLit, *ast.BoolLit, *ast.NilLit:
		// literals carry no references

	case *ast.ListLit:
		for _, el := range e.Elems {
			r.expr(el)
		}

	case *ast.HashLit:
		for i, k := range e.Keys {
			if k.Kind == ast.ExprKey {
				r.expr(k.Expr)
			}
			r.expr(e.Values[i])
		}

	case *ast.FnLit:
		r.enterFunction(e, func() {
			for _, p := range e.Params {
				r.declarePattern(p)
			}
			r.piece(e.Body)
		})

	case *ast.Group:
		r.expr(e.X)

	case *ast.Unary:
		r.expr(e.X)

	case *ast.Binary:
		r.expr(e.L)
		r.expr(e.R)

	case *ast.Call:
		r.expr(e.Fn)
		for _, a := range e.Args {
			r.expr(a)
		}

	case *ast.Index:
		r.expr(e.X)
		r.expr(e.Idx)

	case *ast.Access:
		r.expr(e.X)

	case *ast.If:
		r.expr(e.Cond)
		r.block(e.Then)
		for _, el := range e.Elifs {
			r.expr(el.Cond)
			r.block(el.Then)
		}
		if e.Else != nil {
			r.block(e.Else)
		}

	case *ast.While:
		r.expr(e.Cond)
		r.block(e.Body)

	case *ast.For:
		r.expr(e.Iter)
		r.fn.pushBlock()
		r.declarePattern(e.Patt)
		r.piece(e.Body)
		r.fn.popBlock()

	case *ast.Cond:
		for _, arm := range e.Arms {
			r.expr(arm.Cond)
			r.arm(arm.Body)
		}

	case *ast.Match:
		r.expr(e.Value)
		for _, c := range e.Cases {
			r.fn.pushBlock()
			r.declarePattern(c.Patt)
			r.piece(ast.Piece(c.Body))
			r.fn.popBlock()
		}

	case *ast.Assign:
		r.expr(e.Value)
		r.resolveAssignTarget(e.Target)

	default:
		r.fail(e, "resolver: unhandled expression %T", e)
	}
}

// resolveRef resolves an identifier use. A name not found in any enclosing
// function's locals is assumed to be a global (spec 4.D: "references in
// the root scope resolve to the global environment"); a name found but
// still mid-declaration — read from its own `let` initializer before the
// initializer finished resolving — is the "referencing undefined local"
// error spec 4.D documents.
func (r *Resolver) resolveRef(n ast.Node, name string) {
	if r.topLevel() {
		r.table[n] = Address{Global: true}
		return
	}
	depth, slot, ok, defined := r.fn.lookup(name)
	if !ok {
		r.table[n] = Address{Global: true}
		return
	}
	if !defined {
		r.fail(n, "referencing undefined local: %s", name)
	}
	r.table[n] = Address{Depth: depth, Slot: slot}
}

func (r *Resolver) resolveAssignTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Ident:
		r.resolveRef(t, t.Name)
	case *ast.Index:
		r.expr(t.X)
		r.expr(t.Idx)
	case *ast.Access:
		r.expr(t.X)
	default:
		r.fail(target, "resolver: invalid assignment target %T", target)
	}
}

// FrameSize returns how many slots a function's outermost frame must
// allocate at minimum (its parameter count); nested blocks grow the frame
// further via Environment.Grow, so this is a lower bound, not a fixed size.
func FrameSize(params []ast.Pattern) int {
	total := 0
	for _, p := range params {
		total += len(match.Declared(p))
	}
	return total
}
