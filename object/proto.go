/*
File    : raven/object/proto.go
Package : object
*/
package object

import (
	"fmt"

	"github.com/mahrr/l-lang/chunk"
)

// UpvalueDesc tells a VM closure where to find one upvalue slot when it is
// instantiated from a Proto: either a local slot in the immediately
// enclosing function's frame (FromParentLocal) or an upvalue already
// captured by that enclosing closure (by index into its own Upvalues).
type UpvalueDesc struct {
	FromParentLocal bool
	Index           int
}

// Proto is a compiled function prototype: the bytecode compiler's output
// for one `fn` literal or statement. It is constant once compiled and
// lives in a chunk's constant pool; Closure pairs a Proto with the
// upvalues captured at the point the literal was evaluated.
type Proto struct {
	Name     string
	Arity    int
	Chunk    *chunk.Chunk
	Upvalues []UpvalueDesc
}

func (*Proto) Type() Type { return ProtoType }
func (p *Proto) String() string {
	if p.Name != "" {
		return fmt.Sprintf("<proto %s/%d>", p.Name, p.Arity)
	}
	return fmt.Sprintf("<proto/%d>", p.Arity)
}

// Upvalue is a single captured variable cell. While Closed is false it
// points at a live frame slot (Location); CloseOver copies the slot's
// final value into Value and flips Closed, matching the VM's behavior
// when a frame with captured locals returns.
type Upvalue struct {
	Closed   bool
	Value    Value
	Location *Value
}

// Get reads through the upvalue to wherever its current value lives.
func (u *Upvalue) Get() Value {
	if u.Closed {
		return u.Value
	}
	return *u.Location
}

// Set writes through the upvalue.
func (u *Upvalue) Set(v Value) {
	if u.Closed {
		u.Value = v
		return
	}
	*u.Location = v
}

// CloseOver promotes an open upvalue to a closed one, copying its current
// value off the stack it used to point into.
func (u *Upvalue) CloseOver() {
	if !u.Closed {
		u.Value = *u.Location
		u.Closed = true
		u.Location = nil
	}
}

// VMClosure is a first-class function value in the bytecode VM: a Proto
// plus the upvalue cells captured when the enclosing OP_CLOSURE ran.
type VMClosure struct {
	Proto    *Proto
	Upvalues []*Upvalue
}

func (*VMClosure) Type() Type { return VMClosureType }
func (c *VMClosure) String() string { return c.Proto.String() }
