/*
File    : raven/compiler/refs.go
Package : compiler
*/
package compiler

import (
	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/resolver"
)

func (c *Compiler) getRef(n ast.Node, name string, line int) error {
	addr := c.table[n]
	if addr.Global {
		idx, err := c.addConst(&object.String{Value: name})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpGetGlobal, idx, line)
		return nil
	}
	if addr.Depth == 0 {
		c.emitOpByte(chunk.OpGetLocal, byte(addr.Slot), line)
		return nil
	}
	idx, err := c.resolveUpvalue(c.fn, addr.Depth, addr.Slot)
	if err != nil {
		return err
	}
	c.emitOpByte(chunk.OpGetUpvalue, byte(idx), line)
	return nil
}

func (c *Compiler) setRef(n ast.Node, name string, line int) error {
	addr := c.table[n]
	if addr.Global {
		idx, err := c.addConst(&object.String{Value: name})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpSetGlobal, idx, line)
		return nil
	}
	if addr.Depth == 0 {
		c.emitOpByte(chunk.OpSetLocal, byte(addr.Slot), line)
		return nil
	}
	idx, err := c.resolveUpvalue(c.fn, addr.Depth, addr.Slot)
	if err != nil {
		return err
	}
	c.emitOpByte(chunk.OpSetUpvalue, byte(idx), line)
	return nil
}

// resolveUpvalue finds (or registers) the upvalue index in fc that, when
// followed at run time, reaches the local at (depth, slot) relative to
// fc. depth == 1 means a direct local of fc's immediately enclosing
// function; deeper references chain through the enclosing function's own
// upvalues, recursively, exactly once per compile (cached per Address).
func (c *Compiler) resolveUpvalue(fc *funcCompiler, depth, slot int) (int, error) {
	addr := resolver.Address{Depth: depth, Slot: slot}
	if idx, ok := fc.upvalueCache[addr]; ok {
		return idx, nil
	}
	var desc object.UpvalueDesc
	if depth == 1 {
		desc = object.UpvalueDesc{FromParentLocal: true, Index: slot}
	} else {
		parentIdx, err := c.resolveUpvalue(fc.parent, depth-1, slot)
		if err != nil {
			return 0, err
		}
		desc = object.UpvalueDesc{FromParentLocal: false, Index: parentIdx}
	}
	fc.upvalues = append(fc.upvalues, desc)
	idx := len(fc.upvalues) - 1
	fc.upvalueCache[addr] = idx
	return idx, nil
}
