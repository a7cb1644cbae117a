/*
File    : raven/object/object.go
Package : object
*/

// Package object defines Raven's runtime value model: the tagged union of
// booleans, integers, floats, strings, lists, hashes, closures, builtins,
// constructors, variants, nil, and void described in spec section 3. Both
// the tree evaluator (package eval) and the bytecode VM (package vm)
// operate on these same Value implementations, as the data-flow diagram in
// spec section 2 requires.
//
// The teacher's objects package (GoMixObject: GetType/ToString/ToObject)
// is the direct model for the interface shape here: Value.Type/String
// mirror GetType/ToString. original_source's object.c additionally
// distinguishes a quoting "echo" form from a plain "print" form for
// strings nested inside a list, hash, or variant; the package-level Echo
// function below provides that second rendering without a second method
// on every Value implementation.
package object

import (
	"fmt"
	"strings"
)

// Type identifies a Value's runtime kind.
type Type string

const (
	BoolType       Type = "bool"
	IntType        Type = "int"
	FloatType      Type = "float"
	StringType     Type = "string"
	ListType       Type = "list"
	HashType       Type = "hash"
	ClosureType    Type = "closure"
	BuiltinType    Type = "builtin"
	ConstructorType Type = "constructor"
	VariantType    Type = "variant"
	NilType        Type = "nil"
	VoidType       Type = "void"
	ProtoType      Type = "proto"
	VMClosureType  Type = "vm-closure"
)

// Value is the interface every runtime value implements.
type Value interface {
	Type() Type
	String() string
}

// Truthy implements the "nil and false are falsy, everything else truthy"
// rule from spec section 4.F.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case *Nil:
		return false
	case *Bool:
		return v.Value
	default:
		return true
	}
}

// Echo renders a value the way List, Hash, and Variant print their
// elements: like String, except strings are single-quoted, matching
// original_source's object.c echo_object (`'%s'` for STR_OBJ, print_object
// otherwise). The REPL prints a top-level result with String, not Echo.
func Echo(v Value) string {
	if s, ok := v.(*String); ok {
		return "'" + s.Value + "'"
	}
	return v.String()
}

// ---- Sentinel singletons ----
//
// True, False, Nil, and Void are process-wide singletons; non-collection
// equality and identity checks compare against these directly rather than
// allocating fresh instances, per the data model's sentinel invariant.

type Bool struct{ Value bool }

func (*Bool) Type() Type { return BoolType }
func (b *Bool) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

var (
	True  = &Bool{Value: true}
	False = &Bool{Value: false}
)

// Of returns the canonical True/False singleton for a Go bool.
func Of(b bool) *Bool {
	if b {
		return True
	}
	return False
}

type Nil struct{}

func (*Nil) Type() Type     { return NilType }
func (*Nil) String() string { return "nil" }

var NilValue = &Nil{}

type Void struct{}

func (*Void) Type() Type     { return VoidType }
func (*Void) String() string { return "" }

var VoidValue = &Void{}

// ---- Numbers ----

type Int struct{ Value int64 }

func (*Int) Type() Type        { return IntType }
func (i *Int) String() string  { return fmt.Sprintf("%d", i.Value) }

type Float struct{ Value float64 }

func (*Float) Type() Type       { return FloatType }
func (f *Float) String() string { return fmt.Sprintf("%g", f.Value) }

// ---- String ----

type String struct{ Value string }

func (*String) Type() Type       { return StringType }
func (s *String) String() string { return s.Value }

// ---- List ----

// List is Raven's single sequence type: mutable, heterogeneous, and the
// target of both `|` (cons) and `@` (concat).
type List struct{ Elements []Value }

func (*List) Type() Type { return ListType }
func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range l.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Echo(e))
	}
	b.WriteByte(']')
	return b.String()
}

// Cons returns a new list with head prepended to tail's elements (the `|`
// operator; spec 4.F requires a fresh list, not an in-place mutation).
func Cons(head Value, tail *List) *List {
	elems := make([]Value, 0, len(tail.Elements)+1)
	elems = append(elems, head)
	elems = append(elems, tail.Elements...)
	return &List{Elements: elems}
}

// Concat returns a new list whose spine is left's elements followed by
// right's (the `@` operator; left is shallow-copied, matching spec 4.F).
func Concat(left, right *List) *List {
	elems := make([]Value, 0, len(left.Elements)+len(right.Elements))
	elems = append(elems, left.Elements...)
	elems = append(elems, right.Elements...)
	return &List{Elements: elems}
}

// ---- Closures & builtins ----

// Builtin is a native function exposed to Raven code; Arity of -1 means
// variadic (std functions like `print` accept any argument count).
type Builtin struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (*Builtin) Type() Type       { return BuiltinType }
func (b *Builtin) String() string { return fmt.Sprintf("<built-in %s>", b.Name) }

// ---- Variants ----

// Constructor is the callable value introduced by a `type` declaration's
// variant name; calling it with Arity arguments produces a Variant.
type Constructor struct {
	TypeName string
	Name     string
	Arity    int
}

func (*Constructor) Type() Type { return ConstructorType }
func (c *Constructor) String() string {
	return fmt.Sprintf("<constructor %s/%d>", c.Name, c.Arity)
}

// Variant is a value built by a Constructor: a tagged tuple, printed
// `Name(elem, elem)` to match original_source's object.c print_variant.
type Variant struct {
	Cons  *Constructor
	Elems []Value
}

func (*Variant) Type() Type { return VariantType }
func (v *Variant) String() string {
	var b strings.Builder
	b.WriteString(v.Cons.Name)
	b.WriteByte('(')
	for i, e := range v.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Echo(e))
	}
	b.WriteByte(')')
	return b.String()
}

// Same reports identity/value equality for `==`/`!=`: numbers and strings
// compare by value, everything else (including lists and hashes) by
// identity, per spec section 4.F.
func Same(a, b Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *Int:
		return av.Value == b.(*Int).Value
	case *Float:
		return av.Value == b.(*Float).Value
	case *String:
		return av.Value == b.(*String).Value
	case *Bool:
		return av == b.(*Bool)
	case *Nil:
		return true
	case *Void:
		return true
	default:
		return a == b // pointer identity for list, hash, closure, variant, ...
	}
}
