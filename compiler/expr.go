/*
File    : raven/compiler/expr.go
Package : compiler
*/
package compiler

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/lexer"
	"github.com/mahrr/l-lang/object"
)

func (c *Compiler) expr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.Ident:
		return c.getRef(e, e.Name, e.Where().Line)

	case *ast.IntLit:
		idx, err := c.addConst(&object.Int{Value: e.Value})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpLoadConst, idx, e.Where().Line)
		return nil

	case *ast.FloatLit:
		idx, err := c.addConst(&object.Float{Value: e.Value})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpLoadConst, idx, e.Where().Line)
		return nil

	case *ast.StringLit:
		idx, err := c.addConst(&object.String{Value: e.Value})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpLoadConst, idx, e.Where().Line)
		return nil

	case *ast.RawStringLit:
		idx, err := c.addConst(&object.String{Value: e.Value})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpLoadConst, idx, e.Where().Line)
		return nil

	case *ast.BoolLit:
		if e.Value {
			c.emit(chunk.OpLoadTrue, e.Where().Line)
		} else {
			c.emit(chunk.OpLoadFalse, e.Where().Line)
		}
		return nil

	case *ast.NilLit:
		c.emit(chunk.OpLoadNil, e.Where().Line)
		return nil

	case *ast.ListLit:
		for _, el := range e.Elems {
			if err := c.expr(el); err != nil {
				return err
			}
		}
		return c.emitCount(chunk.OpArray8, chunk.OpArray16, len(e.Elems), e.Where().Line)

	case *ast.HashLit:
		for i, k := range e.Keys {
			if k.Kind == ast.ExprKey {
				if err := c.expr(k.Expr); err != nil {
					return err
				}
			} else {
				idx, err := c.addConst(&object.String{Value: k.Symbol})
				if err != nil {
					return err
				}
				c.emitOpByte(chunk.OpLoadConst, idx, e.Where().Line)
			}
			if err := c.expr(e.Values[i]); err != nil {
				return err
			}
		}
		return c.emitCount(chunk.OpMap8, chunk.OpMap16, len(e.Keys), e.Where().Line)

	case *ast.FnLit:
		return c.closureFor(e, "", e.Params, e.Body, e.Where().Line)

	case *ast.Group:
		return c.expr(e.X)

	case *ast.Unary:
		if err := c.expr(e.X); err != nil {
			return err
		}
		switch e.Op {
		case lexer.MINUS:
			c.emit(chunk.OpNeg, e.Where().Line)
		case lexer.NOT:
			c.emit(chunk.OpNot, e.Where().Line)
		}
		return nil

	case *ast.Binary:
		return c.binary(e)

	case *ast.Call:
		if err := c.expr(e.Fn); err != nil {
			return err
		}
		for _, a := range e.Args {
			if err := c.expr(a); err != nil {
				return err
			}
		}
		if len(e.Args) > 0xFF {
			return fmt.Errorf("%d: too many call arguments for bytecode", e.Where().Line)
		}
		c.emitOpByte(chunk.OpCall, byte(len(e.Args)), e.Where().Line)
		return nil

	case *ast.Index:
		if err := c.expr(e.X); err != nil {
			return err
		}
		if err := c.expr(e.Idx); err != nil {
			return err
		}
		c.emit(chunk.OpIndexGet, e.Where().Line)
		return nil

	case *ast.Access:
		if err := c.expr(e.X); err != nil {
			return err
		}
		idx, err := c.addConst(&object.String{Value: e.Field})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpLoadConst, idx, e.Where().Line)
		c.emit(chunk.OpIndexGet, e.Where().Line)
		return nil

	case *ast.If:
		return c.ifExpr(e)

	case *ast.While:
		return c.whileExpr(e)

	case *ast.For:
		return c.forExpr(e)

	case *ast.Cond:
		return c.condExpr(e)

	case *ast.Match:
		return &Unsupported{Line: e.Where().Line, Feature: "'match' expression"}

	case *ast.Assign:
		return c.assign(e)

	default:
		return fmt.Errorf("%d: compiler: unhandled expression %T", e.Where().Line, e)
	}
}

func (c *Compiler) emitCount(op8, op16 chunk.Op, n int, line int) error {
	if n <= 0xFF {
		c.emitOpByte(op8, byte(n), line)
		return nil
	}
	if n > 0xFFFF {
		return fmt.Errorf("%d: literal has too many elements for bytecode", line)
	}
	c.emit(op16, line)
	c.emitByte(byte(n>>8), line)
	c.emitByte(byte(n), line)
	return nil
}

func (c *Compiler) binary(e *ast.Binary) error {
	if e.Op == lexer.AND || e.Op == lexer.OR {
		return c.shortCircuit(e)
	}
	if err := c.expr(e.L); err != nil {
		return err
	}
	if err := c.expr(e.R); err != nil {
		return err
	}
	line := e.Where().Line
	switch e.Op {
	case lexer.PLUS:
		c.emit(chunk.OpAdd, line)
	case lexer.MINUS:
		c.emit(chunk.OpSub, line)
	case lexer.STAR:
		c.emit(chunk.OpMul, line)
	case lexer.SLASH:
		c.emit(chunk.OpDiv, line)
	case lexer.PERCENT:
		c.emit(chunk.OpMod, line)
	case lexer.EQ:
		c.emit(chunk.OpEq, line)
	case lexer.NE:
		c.emit(chunk.OpNeq, line)
	case lexer.LT:
		c.emit(chunk.OpLt, line)
	case lexer.LE:
		c.emit(chunk.OpLtq, line)
	case lexer.GT:
		c.emit(chunk.OpGt, line)
	case lexer.GE:
		c.emit(chunk.OpGtq, line)
	case lexer.PIPE:
		c.emit(chunk.OpCons, line)
	case lexer.AT:
		c.emit(chunk.OpConcat, line)
	default:
		return fmt.Errorf("%d: compiler: unhandled binary operator %s", line, e.Op)
	}
	return nil
}

// shortCircuit compiles `and`/`or` with OP_JMP_FALSE, which peeks the
// condition without popping it, so the left operand can double as the
// result when it already decides the outcome.
//
//	and: L; JMP_FALSE end; POP; R; end:            (false L short-circuits)
//	or:  L; JMP_FALSE rhs; JMP end; rhs: POP; R; end:  (true L short-circuits)
func (c *Compiler) shortCircuit(e *ast.Binary) error {
	line := e.Where().Line
	if err := c.expr(e.L); err != nil {
		return err
	}
	if e.Op == lexer.AND {
		c.emit(chunk.OpJmpFalse, line)
		end := c.reserveJump(line)
		c.emit(chunk.OpPop, line)
		if err := c.expr(e.R); err != nil {
			return err
		}
		return c.fn.chunk.PatchJump(end)
	}

	c.emit(chunk.OpJmpFalse, line)
	toRHS := c.reserveJump(line)
	c.emit(chunk.OpJmp, line)
	toEnd := c.reserveJump(line)
	if err := c.fn.chunk.PatchJump(toRHS); err != nil {
		return err
	}
	c.emit(chunk.OpPop, line)
	if err := c.expr(e.R); err != nil {
		return err
	}
	return c.fn.chunk.PatchJump(toEnd)
}

func (c *Compiler) reserveJump(line int) int {
	at := len(c.fn.chunk.Code)
	c.emitByte(0, line)
	c.emitByte(0, line)
	return at
}
