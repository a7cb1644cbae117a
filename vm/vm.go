/*
File    : raven/vm/vm.go
Package : vm
*/

// Package vm is Raven's bytecode interpreter: a stack machine that
// executes a *chunk.Chunk produced by package compiler. original_source's
// own bytecode path never got this far (chunk.c/compiler.c compile, but
// no vm.c ever shipped an execution loop), so this package's dispatch
// loop and call-frame model are grounded in chunk.h's opcode contracts
// (the comments next to each OP_ constant) and in how package object
// already represents lists, hashes, closures, and environments for the
// tree evaluator — the VM reuses those same Value implementations rather
// than inventing parallel runtime types.
//
// Each call frame owns a slot array (its "registers": locals addressed by
// OP_GET_LOCAL/OP_SET_LOCAL) separate from the VM's general operand stack,
// which holds intermediate expression values, call arguments, and a
// callee's return value. This mirrors object.Environment's per-frame slot
// array, adapted from a linked chain to an explicit call stack.
package vm

import (
	"fmt"

	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/object"
)

// frame is one call's activation record: its chunk, instruction pointer,
// locals slot array, captured upvalues, and the operand-stack base that
// OP_RETURN truncates vm.stack back to (locals are not kept on the stack).
type frame struct {
	closure *object.VMClosure // nil for the top-level program frame
	proto   *chunk.Chunk
	ip      int
	locals  []object.Value
	base    int // index into vm.stack where this frame's operand window starts
}

// VM executes compiled chunks against a shared global environment.
type VM struct {
	globals map[string]object.Value
	stack   []object.Value
	frames  []*frame
	// openUpvalues are upvalues still pointing into a live frame's slots;
	// when a frame returns, every one pointing into its slot array is
	// closed and dropped from this list.
	openUpvalues []*object.Upvalue
}

// New creates a VM with an empty global environment.
func New() *VM {
	return &VM{globals: make(map[string]object.Value)}
}

// DefineGlobal pre-binds a name (used to install std's builtins before a
// program runs).
func (vm *VM) DefineGlobal(name string, v object.Value) {
	vm.globals[name] = v
}

// Run executes prog (the top-level program chunk CompileProgram
// produced) and returns the value OP_EXIT leaves on top of the stack.
func (vm *VM) Run(prog *chunk.Chunk) (object.Value, error) {
	top := &frame{proto: prog, locals: newLocals(prog.FrameSize)}
	vm.frames = append(vm.frames, top)
	return vm.run()
}

// newLocals preallocates a frame's slot array to its full compiled size so
// that no append ever reallocates the backing array underneath a live
// upvalue's pointer into it (see chunk.Chunk.FrameSize).
func newLocals(size int) []object.Value {
	locals := make([]object.Value, size)
	for i := range locals {
		locals[i] = object.NilValue
	}
	return locals
}

func (vm *VM) fail(f *frame, format string, args ...interface{}) error {
	line := f.proto.DecodeLine(f.ip)
	return fmt.Errorf("%d: %s", line, fmt.Sprintf(format, args...))
}

func (vm *VM) push(v object.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() object.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) run() (object.Value, error) {
	for {
		f := vm.frames[len(vm.frames)-1]
		op := chunk.Op(f.proto.Code[f.ip])
		f.ip++

		switch op {
		case chunk.OpLoadTrue:
			vm.push(object.True)
		case chunk.OpLoadFalse:
			vm.push(object.False)
		case chunk.OpLoadNil:
			vm.push(object.NilValue)
		case chunk.OpLoadVoid:
			vm.push(object.VoidValue)
		case chunk.OpLoadConst:
			idx := vm.readByte(f)
			vm.push(f.proto.Constants[idx].(object.Value))

		case chunk.OpPop:
			vm.pop()
		case chunk.OpPopn:
			n := int(vm.readByte(f))
			vm.stack = vm.stack[:len(vm.stack)-n]

		case chunk.OpAdd, chunk.OpSub, chunk.OpMul, chunk.OpDiv, chunk.OpMod,
			chunk.OpEq, chunk.OpNeq, chunk.OpLt, chunk.OpLtq, chunk.OpGt, chunk.OpGtq,
			chunk.OpCons, chunk.OpConcat:
			r, l := vm.pop(), vm.pop()
			v, err := applyBinary(op, l, r)
			if err != nil {
				return nil, vm.fail(f, "%s", err)
			}
			vm.push(v)

		case chunk.OpNeg:
			v, err := negate(vm.pop())
			if err != nil {
				return nil, vm.fail(f, "%s", err)
			}
			vm.push(v)

		case chunk.OpNot:
			vm.push(object.Of(!object.Truthy(vm.pop())))

		case chunk.OpDefGlobal:
			name := f.proto.Constants[vm.readByte(f)].(*object.String).Value
			vm.globals[name] = vm.pop()

		case chunk.OpGetGlobal:
			name := f.proto.Constants[vm.readByte(f)].(*object.String).Value
			v, ok := vm.globals[name]
			if !ok {
				return nil, vm.fail(f, "undefined global '%s'", name)
			}
			vm.push(v)

		case chunk.OpSetGlobal:
			name := f.proto.Constants[vm.readByte(f)].(*object.String).Value
			if _, ok := vm.globals[name]; !ok {
				return nil, vm.fail(f, "undefined global '%s'", name)
			}
			vm.globals[name] = vm.peek(0)

		case chunk.OpGetLocal:
			slot := int(vm.readByte(f))
			vm.push(vm.local(f, slot))

		case chunk.OpSetLocal:
			slot := int(vm.readByte(f))
			vm.setLocal(f, slot, vm.peek(0))

		case chunk.OpGetUpvalue:
			idx := int(vm.readByte(f))
			vm.push(f.closure.Upvalues[idx].Get())

		case chunk.OpSetUpvalue:
			idx := int(vm.readByte(f))
			f.closure.Upvalues[idx].Set(vm.peek(0))

		case chunk.OpArray8, chunk.OpArray16:
			n := vm.readCount(f, op == chunk.OpArray16)
			elems := make([]object.Value, n)
			copy(elems, vm.stack[len(vm.stack)-n:])
			vm.stack = vm.stack[:len(vm.stack)-n]
			vm.push(&object.List{Elements: elems})

		case chunk.OpMap8, chunk.OpMap16:
			n := vm.readCount(f, op == chunk.OpMap16)
			h := object.NewHash()
			base := len(vm.stack) - 2*n
			for i := 0; i < n; i++ {
				k := vm.stack[base+2*i]
				v := vm.stack[base+2*i+1]
				h.Set(k, v)
			}
			vm.stack = vm.stack[:base]
			vm.push(h)

		case chunk.OpIndexGet:
			idx, x := vm.pop(), vm.pop()
			v, err := indexGet(x, idx)
			if err != nil {
				return nil, vm.fail(f, "%s", err)
			}
			vm.push(v)

		case chunk.OpIndexSet:
			idx, x, v := vm.pop(), vm.pop(), vm.peek(0)
			if err := indexSet(x, idx, v); err != nil {
				return nil, vm.fail(f, "%s", err)
			}

		case chunk.OpClosure:
			proto := f.proto.Constants[vm.readByte(f)].(*object.Proto)
			cl := &object.VMClosure{Proto: proto, Upvalues: make([]*object.Upvalue, len(proto.Upvalues))}
			for i, d := range proto.Upvalues {
				if d.FromParentLocal {
					cl.Upvalues[i] = vm.captureUpvalue(f, d.Index)
				} else {
					cl.Upvalues[i] = f.closure.Upvalues[d.Index]
				}
			}
			vm.push(cl)

		case chunk.OpCloseUpvalue:
			// Reserved: the current compiler never emits this (locals are
			// slot-indexed for the whole function frame, not pushed and
			// popped block by block, so there is no "leaving a block"
			// moment to close a captured local early). Closing still
			// happens correctly at OP_RETURN.

		case chunk.OpCall:
			argc := int(vm.readByte(f))
			if err := vm.call(argc); err != nil {
				return nil, vm.fail(f, "%s", err)
			}

		case chunk.OpJmp:
			off := vm.readShort(f)
			f.ip += off

		case chunk.OpJmpBack:
			off := vm.readShort(f)
			f.ip -= off

		case chunk.OpJmpFalse:
			off := vm.readShort(f)
			if !object.Truthy(vm.peek(0)) {
				f.ip += off
			}

		case chunk.OpJmpPopFalse:
			off := vm.readShort(f)
			if !object.Truthy(vm.pop()) {
				f.ip += off
			}

		case chunk.OpAssert:
			msgIdx := vm.readByte(f)
			if !object.Truthy(vm.pop()) {
				msg := f.proto.Constants[msgIdx].(*object.String).Value
				return nil, vm.fail(f, "assertion failed: %s", msg)
			}

		case chunk.OpReturn:
			result := vm.pop()
			vm.closeUpvaluesFrom(f, 0)
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stack = vm.stack[:f.base]
			if len(vm.frames) == 0 {
				return result, nil
			}
			vm.push(result)

		case chunk.OpExit:
			if len(vm.stack) == 0 {
				return object.VoidValue, nil
			}
			return vm.peek(0), nil

		default:
			return nil, vm.fail(f, "unknown opcode %d", op)
		}
	}
}

func (vm *VM) readByte(f *frame) byte {
	b := f.proto.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort(f *frame) int {
	hi, lo := vm.readByte(f), vm.readByte(f)
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readCount(f *frame, wide bool) int {
	if !wide {
		return int(vm.readByte(f))
	}
	return vm.readShort(f)
}

func (vm *VM) local(f *frame, slot int) object.Value {
	return f.locals[slot]
}

func (vm *VM) setLocal(f *frame, slot int, v object.Value) {
	f.locals[slot] = v
}

// captureUpvalue finds or creates an open upvalue pointing at f's slot.
func (vm *VM) captureUpvalue(f *frame, slot int) *object.Upvalue {
	for _, u := range vm.openUpvalues {
		if !u.Closed && u.Location == &f.locals[slot] {
			return u
		}
	}
	u := &object.Upvalue{Location: &f.locals[slot]}
	vm.openUpvalues = append(vm.openUpvalues, u)
	return u
}

// closeUpvaluesFrom promotes every open upvalue pointing at f's slots at
// or above fromSlot to closed, detaching them from f's locals array
// before it is discarded.
func (vm *VM) closeUpvaluesFrom(f *frame, fromSlot int) {
	if fromSlot >= len(f.locals) {
		return
	}
	kept := vm.openUpvalues[:0]
	for _, u := range vm.openUpvalues {
		inRange := false
		for i := fromSlot; i < len(f.locals); i++ {
			if u.Location == &f.locals[i] {
				inRange = true
				break
			}
		}
		if inRange {
			u.CloseOver()
		} else {
			kept = append(kept, u)
		}
	}
	vm.openUpvalues = kept
}

// call pops argc arguments and the callee off the stack and either pushes
// a new frame (VMClosure) or runs a builtin/constructor to completion
// in-place (Builtin, Constructor).
func (vm *VM) call(argc int) error {
	callee := vm.stack[len(vm.stack)-argc-1]
	switch c := callee.(type) {
	case *object.VMClosure:
		if argc != c.Proto.Arity {
			return fmt.Errorf("function arity mismatch: want %d, got %d", c.Proto.Arity, argc)
		}
		base := len(vm.stack) - argc
		locals := newLocals(c.Proto.Chunk.FrameSize)
		copy(locals, vm.stack[base:])
		vm.stack = vm.stack[:base-1] // drop args and the callee
		nf := &frame{closure: c, proto: c.Proto.Chunk, locals: locals, base: len(vm.stack)}
		vm.frames = append(vm.frames, nf)
		return nil

	case *object.Builtin:
		if c.Arity >= 0 && argc != c.Arity {
			return fmt.Errorf("function arity mismatch: want %d, got %d", c.Arity, argc)
		}
		args := make([]object.Value, argc)
		copy(args, vm.stack[len(vm.stack)-argc:])
		v, err := c.Fn(args)
		if err != nil {
			return err
		}
		vm.stack = vm.stack[:len(vm.stack)-argc-1]
		vm.push(v)
		return nil

	case *object.Constructor:
		if argc != c.Arity {
			return fmt.Errorf("constructor arity mismatch: want %d, got %d", c.Arity, argc)
		}
		elems := make([]object.Value, argc)
		copy(elems, vm.stack[len(vm.stack)-argc:])
		vm.stack = vm.stack[:len(vm.stack)-argc-1]
		vm.push(&object.Variant{Cons: c, Elems: elems})
		return nil

	default:
		return fmt.Errorf("cannot call a value of type %s", callee.Type())
	}
}
