/*
File    : raven/compiler/control.go
Package : compiler
*/
package compiler

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/object"
)

func (c *Compiler) ifExpr(e *ast.If) error {
	line := e.Where().Line
	var ends []int

	if err := c.expr(e.Cond); err != nil {
		return err
	}
	c.emit(chunk.OpJmpPopFalse, line)
	next := c.reserveJump(line)
	if err := c.pieceAsExpr(e.Then, line); err != nil {
		return err
	}
	c.emit(chunk.OpJmp, line)
	ends = append(ends, c.reserveJump(line))
	if err := c.fn.chunk.PatchJump(next); err != nil {
		return err
	}

	for _, el := range e.Elifs {
		if err := c.expr(el.Cond); err != nil {
			return err
		}
		c.emit(chunk.OpJmpPopFalse, line)
		next = c.reserveJump(line)
		if err := c.pieceAsExpr(el.Then, line); err != nil {
			return err
		}
		c.emit(chunk.OpJmp, line)
		ends = append(ends, c.reserveJump(line))
		if err := c.fn.chunk.PatchJump(next); err != nil {
			return err
		}
	}

	if e.Else != nil {
		if err := c.pieceAsExpr(e.Else, line); err != nil {
			return err
		}
	} else {
		c.emit(chunk.OpLoadVoid, line)
	}

	for _, at := range ends {
		if err := c.fn.chunk.PatchJump(at); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) whileExpr(e *ast.While) error {
	line := e.Where().Line
	start := len(c.fn.chunk.Code)
	lp := &loopPatches{start: start}
	c.fn.loops = append(c.fn.loops, lp)

	if err := c.expr(e.Cond); err != nil {
		return err
	}
	c.emit(chunk.OpJmpPopFalse, line)
	exit := c.reserveJump(line)

	if err := c.piece(e.Body); err != nil {
		return err
	}
	continueTarget := len(c.fn.chunk.Code)
	if err := c.fn.chunk.EmitJumpBack(start, line); err != nil {
		return err
	}
	if err := c.fn.chunk.PatchJump(exit); err != nil {
		return err
	}

	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]
	for _, at := range lp.breaks {
		if err := c.fn.chunk.PatchJump(at); err != nil {
			return err
		}
	}
	c.emit(chunk.OpLoadVoid, line)
	for _, at := range lp.continues {
		// continue jumps to just before the back-edge, re-testing Cond.
		if err := c.patchJumpTo(at, continueTarget); err != nil {
			return err
		}
	}
	return nil
}

// patchJumpTo backfills a forward OP_JMP operand at patchAt to land
// exactly at target, for continue statements that must jump to a fixed
// earlier point that PatchJump's "current end of chunk" assumption
// doesn't fit.
func (c *Compiler) patchJumpTo(patchAt, target int) error {
	offset := target - patchAt - 2
	if offset < 0 {
		return fmt.Errorf("compiler: continue target precedes jump site")
	}
	if offset > 0xFFFF {
		return chunk.ErrJumpTooFar
	}
	c.fn.chunk.Code[patchAt] = byte(offset >> 8)
	c.fn.chunk.Code[patchAt+1] = byte(offset)
	return nil
}

// forExpr only supports a bare identifier loop pattern over a list; hash
// iteration and destructuring loop patterns are left to package eval (see
// the package doc's scope note).
func (c *Compiler) forExpr(e *ast.For) error {
	ident, ok := e.Patt.(*ast.IdentPattern)
	if !ok {
		return &Unsupported{Line: e.Where().Line, Feature: "destructuring 'for' pattern"}
	}
	line := e.Where().Line

	if err := c.expr(e.Iter); err != nil {
		return err
	}
	// index := 0
	idx, err := c.addConst(&object.Int{Value: 0})
	if err != nil {
		return err
	}
	c.emitOpByte(chunk.OpLoadConst, idx, line)
	indexSlot := c.allocLocalSlot()
	c.emitOpByte(chunk.OpSetLocal, byte(indexSlot), line)
	c.emit(chunk.OpPop, line)
	listSlot := c.allocLocalSlot()
	// Stack currently holds the iterable from c.expr(e.Iter); store it.
	c.emitOpByte(chunk.OpSetLocal, byte(listSlot), line)
	c.emit(chunk.OpPop, line)

	start := len(c.fn.chunk.Code)
	lp := &loopPatches{start: start}
	c.fn.loops = append(c.fn.loops, lp)

	// condition: index < len(list), calling the same global `len` builtin
	// a Raven program would; list indexing stays an error past the end
	// everywhere, including here, so the loop must never reach it.
	lenIdx, err := c.addConst(&object.String{Value: "len"})
	if err != nil {
		return err
	}
	c.emitOpByte(chunk.OpGetLocal, byte(indexSlot), line)
	c.emitOpByte(chunk.OpGetGlobal, lenIdx, line)
	c.emitOpByte(chunk.OpGetLocal, byte(listSlot), line)
	c.emitOpByte(chunk.OpCall, 1, line)
	c.emit(chunk.OpLt, line)
	c.emit(chunk.OpJmpPopFalse, line)
	exit := c.reserveJump(line)

	c.emitOpByte(chunk.OpGetLocal, byte(listSlot), line)
	c.emitOpByte(chunk.OpGetLocal, byte(indexSlot), line)
	c.emit(chunk.OpIndexGet, line)
	if err := c.defineIdent(ident, line); err != nil {
		return err
	}

	if err := c.piece(e.Body); err != nil {
		return err
	}

	continueTarget := len(c.fn.chunk.Code)
	// index = index + 1
	c.emitOpByte(chunk.OpGetLocal, byte(indexSlot), line)
	one, err := c.addConst(&object.Int{Value: 1})
	if err != nil {
		return err
	}
	c.emitOpByte(chunk.OpLoadConst, one, line)
	c.emit(chunk.OpAdd, line)
	c.emitOpByte(chunk.OpSetLocal, byte(indexSlot), line)
	c.emit(chunk.OpPop, line)
	if err := c.fn.chunk.EmitJumpBack(start, line); err != nil {
		return err
	}

	if err := c.fn.chunk.PatchJump(exit); err != nil {
		return err
	}

	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]
	for _, at := range lp.breaks {
		if err := c.fn.chunk.PatchJump(at); err != nil {
			return err
		}
	}
	c.emit(chunk.OpLoadVoid, line)
	for _, at := range lp.continues {
		if err := c.patchJumpTo(at, continueTarget); err != nil {
			return err
		}
	}
	return nil
}

// allocLocalSlot hands out a slot past every name the resolver assigned
// in the current function, for the hidden index/list bookkeeping a
// compiled `for` loop needs.
func (c *Compiler) allocLocalSlot() int {
	return c.fn.nextHiddenSlot()
}

func (c *Compiler) condExpr(e *ast.Cond) error {
	line := e.Where().Line
	var ends []int
	for _, arm := range e.Arms {
		if err := c.expr(arm.Cond); err != nil {
			return err
		}
		c.emit(chunk.OpJmpPopFalse, line)
		next := c.reserveJump(line)
		if err := c.pieceAsExpr(ast.Piece(arm.Body), line); err != nil {
			return err
		}
		c.emit(chunk.OpJmp, line)
		ends = append(ends, c.reserveJump(line))
		if err := c.fn.chunk.PatchJump(next); err != nil {
			return err
		}
	}
	c.emit(chunk.OpLoadVoid, line)
	for _, at := range ends {
		if err := c.fn.chunk.PatchJump(at); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) assign(e *ast.Assign) error {
	line := e.Where().Line
	if err := c.expr(e.Value); err != nil {
		return err
	}
	switch t := e.Target.(type) {
	case *ast.Ident:
		return c.setRef(t, t.Name, line)
	case *ast.Index:
		if err := c.expr(t.X); err != nil {
			return err
		}
		if err := c.expr(t.Idx); err != nil {
			return err
		}
		c.emit(chunk.OpIndexSet, line)
		return nil
	case *ast.Access:
		if err := c.expr(t.X); err != nil {
			return err
		}
		idx, err := c.addConst(&object.String{Value: t.Field})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpLoadConst, idx, line)
		c.emit(chunk.OpIndexSet, line)
		return nil
	default:
		return fmt.Errorf("%d: compiler: invalid assignment target %T", line, e.Target)
	}
}
