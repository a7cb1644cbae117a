/*
File    : raven/compiler/compiler.go
Package : compiler
*/

// Package compiler is Raven's single-pass bytecode compiler: it walks the
// same resolved AST package eval walks, but instead of producing a value
// directly it emits chunk.Op instructions (spec section 4.H / path H).
// Compiling from the shared AST rather than re-deriving a second Pratt
// pass straight from tokens means the lexer/parser/resolver stages are
// exercised identically by both execution strategies.
//
// Scope: original_source itself shipped the bytecode VM and the old
// tree-walking interpreter as two incomplete, diverging paths (duplicate
// debug.c files, a stubbed `for`); this compiler keeps that same
// division of labor rather than pretending the newer path is finished.
// `match` expressions and any pattern more complex than a bare identifier
// (in `let`, function parameters, and `for`) are compile-time errors here
// — programs using them run under package eval instead. `cond`, `if`,
// `while`, simple `for`, closures, and calls are fully compiled.
package compiler

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/chunk"
	"github.com/mahrr/l-lang/object"
	"github.com/mahrr/l-lang/resolver"
)

// Unsupported is returned (wrapped with source position) when a piece
// uses a construct this compiler does not lower. Such a piece runs only
// under package eval; main.go reports this error and does not fall back.
type Unsupported struct {
	Line    int
	Feature string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("%d: not supported by the bytecode compiler: %s", e.Line, e.Feature)
}

type loopPatches struct {
	breaks    []int
	continues []int
	start     int
}

type funcCompiler struct {
	parent       *funcCompiler
	chunk        *chunk.Chunk
	upvalues     []object.UpvalueDesc
	upvalueCache map[resolver.Address]int
	loops        []*loopPatches
	nextSlot     int // next free slot past every one the resolver assigned
}

func newFuncCompiler(parent *funcCompiler) *funcCompiler {
	return &funcCompiler{
		parent:       parent,
		chunk:        chunk.New(),
		upvalueCache: make(map[resolver.Address]int),
	}
}

// nextHiddenSlot hands out a frame slot past every one resolver.Resolve
// assigned to a named binding, for bytecode the compiler itself emits
// (a compiled `for` loop's hidden index/iterable bookkeeping). Safe
// because the finished chunk's FrameSize counts these hidden slots too,
// and the VM sizes every frame's slot array from FrameSize.
func (fc *funcCompiler) nextHiddenSlot() int {
	slot := fc.nextSlot
	fc.nextSlot++
	return slot
}

// Compiler lowers a resolved AST to bytecode.
type Compiler struct {
	table resolver.Table
	fn    *funcCompiler
}

// New creates a Compiler over the addresses a resolver.Resolve pass
// produced.
func New(table resolver.Table) *Compiler {
	return &Compiler{table: table}
}

// CompileProgram compiles piece as a top-level program, returning its
// chunk (top-level code has no parameters and no upvalues of its own).
// The value of the last expression statement (void otherwise) is left on
// the stack for OP_EXIT to return.
func (c *Compiler) CompileProgram(piece ast.Piece) (*chunk.Chunk, error) {
	c.fn = newFuncCompiler(nil)
	c.fn.nextSlot = c.table[resolver.FrameKey{Node: resolver.TopLevel}].Slot
	if err := c.pieceAsExpr(piece, 0); err != nil {
		return nil, err
	}
	c.fn.chunk.WriteOp(chunk.OpExit, 0)
	c.fn.chunk.FrameSize = c.fn.nextSlot
	return c.fn.chunk, nil
}

func (c *Compiler) emit(op chunk.Op, line int)          { c.fn.chunk.WriteOp(op, line) }
func (c *Compiler) emitByte(b byte, line int)           { c.fn.chunk.WriteByte(b, line) }
func (c *Compiler) emitOpByte(op chunk.Op, b byte, ln int) {
	c.emit(op, ln)
	c.emitByte(b, ln)
}

func (c *Compiler) addConst(v object.Value) (byte, error) {
	idx := c.fn.chunk.AddConstant(v)
	if idx > 0xFF {
		return 0, fmt.Errorf("compiler: constant pool exceeded 256 entries")
	}
	return byte(idx), nil
}

func (c *Compiler) piece(p ast.Piece) error {
	for _, s := range p {
		if err := c.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// pieceAsExpr compiles a piece so that exactly one value is left on the
// stack: the value of its last expression statement (OP_LOAD_VOID if it
// was empty or ended in a non-expression statement), matching eval.Run's
// "value of the last statement" contract for if/while/cond bodies used as
// expressions.
func (c *Compiler) pieceAsExpr(p ast.Piece, line int) error {
	if len(p) == 0 {
		c.emit(chunk.OpLoadVoid, line)
		return nil
	}
	for i, s := range p {
		last := i == len(p)-1
		if es, ok := s.(*ast.ExprStmt); ok {
			if err := c.expr(es.X); err != nil {
				return err
			}
			if !last {
				c.emit(chunk.OpPop, es.Where().Line)
			}
			continue
		}
		if err := c.stmt(s); err != nil {
			return err
		}
		if last {
			c.emit(chunk.OpLoadVoid, s.Where().Line)
		}
	}
	return nil
}

func (c *Compiler) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ExprStmt:
		if err := c.expr(s.X); err != nil {
			return err
		}
		c.emit(chunk.OpPop, s.Where().Line)
		return nil

	case *ast.LetStmt:
		if err := c.expr(s.Value); err != nil {
			return err
		}
		return c.defineIdent(s.Patt, s.Where().Line)

	case *ast.FnStmt:
		if err := c.closureFor(s, s.Name, s.Params, s.Body, s.Where().Line); err != nil {
			return err
		}
		return c.defineIdent(&ast.IdentPattern{Base: ast.NewBase(s.Where()), Name: s.Name}, s.Where().Line, s)

	case *ast.ReturnStmt:
		if s.Value != nil {
			if err := c.expr(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(chunk.OpLoadVoid, s.Where().Line)
		}
		c.emit(chunk.OpReturn, s.Where().Line)
		return nil

	case *ast.BreakStmt:
		if len(c.fn.loops) == 0 {
			return fmt.Errorf("%d: 'break' outside a loop", s.Where().Line)
		}
		c.emit(chunk.OpJmp, s.Where().Line)
		at := len(c.fn.chunk.Code)
		c.emitByte(0, s.Where().Line)
		c.emitByte(0, s.Where().Line)
		lp := c.fn.loops[len(c.fn.loops)-1]
		lp.breaks = append(lp.breaks, at)
		return nil

	case *ast.ContinueStmt:
		if len(c.fn.loops) == 0 {
			return fmt.Errorf("%d: 'continue' outside a loop", s.Where().Line)
		}
		c.emit(chunk.OpJmp, s.Where().Line)
		at := len(c.fn.chunk.Code)
		c.emitByte(0, s.Where().Line)
		c.emitByte(0, s.Where().Line)
		lp := c.fn.loops[len(c.fn.loops)-1]
		lp.continues = append(lp.continues, at)
		return nil

	case *ast.TypeStmt:
		for _, v := range s.Variants {
			cons := &object.Constructor{TypeName: s.Name, Name: v.Name, Arity: v.Arity}
			idx, err := c.addConst(cons)
			if err != nil {
				return err
			}
			c.emitOpByte(chunk.OpLoadConst, idx, s.Where().Line)
			nameIdx, err := c.addConst(&object.String{Value: v.Name})
			if err != nil {
				return err
			}
			c.emitOpByte(chunk.OpDefGlobal, nameIdx, s.Where().Line)
		}
		return nil

	default:
		return fmt.Errorf("%d: compiler: unhandled statement %T", s.Where().Line, s)
	}
}

// defineIdent stores the value currently on top of the stack into the
// binding addr describes. Only IdentPattern is supported directly; the
// node passed may be an *ast.IdentPattern or (for FnStmt) a synthesized
// one sharing the resolver's Address for the real declaring node.
func (c *Compiler) defineIdent(p ast.Pattern, line int, addrNode ...ast.Node) error {
	ip, ok := p.(*ast.IdentPattern)
	if !ok {
		return &Unsupported{Line: line, Feature: "destructuring pattern in 'let'/parameter/'for'"}
	}
	var node ast.Node = ip
	if len(addrNode) > 0 {
		node = addrNode[0]
	}
	addr := c.table[node]
	if addr.Global {
		idx, err := c.addConst(&object.String{Value: ip.Name})
		if err != nil {
			return err
		}
		c.emitOpByte(chunk.OpDefGlobal, idx, line)
		return nil
	}
	// Locals live in the frame's slot array, not on the operand stack:
	// copy the value into its slot, then pop it off the stack.
	c.emitOpByte(chunk.OpSetLocal, byte(addr.Slot), line)
	c.emit(chunk.OpPop, line)
	return nil
}
