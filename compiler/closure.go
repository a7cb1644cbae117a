/*
File    : raven/compiler/closure.go
Package : compiler
*/
package compiler

import (
	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/resolver"
)

// closureFor compiles an `fn` literal or statement body into its own
// chunk, wraps it in an object.Proto recording the upvalues the body
// captured, and emits OP_CLOSURE so the VM instantiates an
// object.VMClosure over it at the point the literal is evaluated. node is
// whichever AST node the resolver used as this function's FrameKey (the
// *ast.FnLit or *ast.FnStmt).
//
// Like package eval's call, a body that runs off its end without an
// explicit `return` yields its last expression's value (spec 4.C), so the
// body compiles via pieceAsExpr rather than plain piece.
func (c *Compiler) closureFor(node ast.Node, name string, params []ast.Pattern, body ast.Piece, line int) error {
	for _, p := range params {
		if _, ok := p.(*ast.IdentPattern); !ok {
			return &Unsupported{Line: line, Feature: "destructuring function parameter"}
		}
	}

	parent := c.fn
	fc := newFuncCompiler(parent)
	fc.nextSlot = c.table[resolver.FrameKey{Node: node}].Slot
	c.fn = fc

	if err := c.pieceAsExpr(body, line); err != nil {
		c.fn = parent
		return err
	}
	fc.chunk.WriteOp(chunk.OpReturn, line)
	fc.chunk.FrameSize = fc.nextSlot

	proto := &object.Proto{
		Name:     name,
		Arity:    len(params),
		Chunk:    fc.chunk,
		Upvalues: fc.upvalues,
	}
	c.fn = parent

	idx, err := c.addConst(proto)
	if err != nil {
		return err
	}
	c.emitOpByte(chunk.OpClosure, idx, line)
	return nil
}
