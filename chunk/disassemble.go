/*
File    : raven/chunk/disassemble.go
Package : chunk
*/
package chunk

import "fmt"

// opNames mirrors original_source's debug.c name table: one readable name
// per opcode, used only by Disassemble.
var opNames = map[Op]string{
	OpLoadTrue:  "LOAD_TRUE",
	OpLoadFalse: "LOAD_FALSE",
	OpLoadNil:   "LOAD_NIL",
	OpLoadVoid:  "LOAD_VOID",
	OpLoadConst: "LOAD_CONST",

	OpLoad:  "LOAD",
	OpStore: "STORE",

	OpAdd: "ADD",
	OpSub: "SUB",
	OpMul: "MUL",
	OpDiv: "DIV",
	OpMod: "MOD",
	OpNeg: "NEG",

	OpEq:  "EQ",
	OpNeq: "NEQ",
	OpLt:  "LT",
	OpLtq: "LTQ",
	OpGt:  "GT",
	OpGtq: "GTQ",

	OpCons:   "CONS",
	OpConcat: "CONCAT",
	OpNot:    "NOT",

	OpDefGlobal: "DEF_GLOBAL",
	OpSetGlobal: "SET_GLOBAL",
	OpGetGlobal: "GET_GLOBAL",
	OpSetLocal:  "SET_LOCAL",
	OpGetLocal:  "GET_LOCAL",
	OpSetUpvalue: "SET_UPVALUE",
	OpGetUpvalue: "GET_UPVALUE",

	OpArray8:  "ARRAY8",
	OpArray16: "ARRAY16",
	OpMap8:    "MAP8",
	OpMap16:   "MAP16",
	OpIndexGet: "INDEX_GET",
	OpIndexSet: "INDEX_SET",

	OpClosure:      "CLOSURE",
	OpCloseUpvalue: "CLOSE_UPVALUE",

	OpCall:        "CALL",
	OpJmp:         "JMP",
	OpJmpBack:     "JMP_BACK",
	OpJmpFalse:    "JMP_FALSE",
	OpJmpPopFalse: "JMP_POP_FALSE",

	OpPop:  "POP",
	OpPopn: "POPN",

	OpAssert: "ASSERT",

	OpReturn: "RETURN",
	OpExit:   "EXIT",
}

// oneByteOperand is the set of opcodes followed by a single byte operand
// (a constant-pool index, local/upvalue slot, or count).
var oneByteOperand = map[Op]bool{
	OpLoadConst: true,
	OpDefGlobal: true, OpSetGlobal: true, OpGetGlobal: true,
	OpSetLocal: true, OpGetLocal: true,
	OpSetUpvalue: true, OpGetUpvalue: true,
	OpArray8: true, OpMap8: true,
	OpClosure: true,
	OpCall:    true,
	OpPopn:    true,
	OpAssert:  true,
}

// twoByteOperand is the set of opcodes followed by a 2-byte big-endian
// operand (a jump offset or a wide element/pair count).
var twoByteOperand = map[Op]bool{
	OpArray16: true, OpMap16: true,
	OpJmp: true, OpJmpBack: true, OpJmpFalse: true, OpJmpPopFalse: true,
}

// Disassemble renders a chunk's instruction stream in the original_source
// debug.c style: one `offset  line  NAME operand` line per instruction.
// It exists for test assertions, not as a REPL-facing feature.
func (c *Chunk) Disassemble(name string) string {
	out := fmt.Sprintf("== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		var instr string
		instr, offset = c.disassembleInstruction(offset)
		out += instr
	}
	return out
}

func (c *Chunk) disassembleInstruction(offset int) (string, int) {
	op := Op(c.Code[offset])
	line := c.DecodeLine(offset)
	name, ok := opNames[op]
	if !ok {
		return fmt.Sprintf("%04d %4d UNKNOWN(%d)\n", offset, line, op), offset + 1
	}

	switch {
	case oneByteOperand[op]:
		arg := c.Code[offset+1]
		return fmt.Sprintf("%04d %4d %-14s %d\n", offset, line, name, arg), offset + 2
	case twoByteOperand[op]:
		arg := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
		return fmt.Sprintf("%04d %4d %-14s %d\n", offset, line, name, arg), offset + 3
	default:
		return fmt.Sprintf("%04d %4d %s\n", offset, line, name), offset + 1
	}
}
