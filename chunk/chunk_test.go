package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineRunLength(t *testing.T) {
	c := New()
	c.WriteOp(OpLoadTrue, 1)
	c.WriteOp(OpLoadFalse, 1)
	c.WriteOp(OpAdd, 2)
	c.WriteOp(OpReturn, 3)

	cases := []struct {
		offset, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.DecodeLine(tc.offset), "offset %d", tc.offset)
	}
}

func TestAddConstantReturnsIndex(t *testing.T) {
	c := New()
	i0 := c.AddConstant(stringValue("a"))
	i1 := c.AddConstant(stringValue("b"))
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
}

func TestPatchJumpWritesBigEndianOffset(t *testing.T) {
	c := New()
	c.WriteOp(OpJmpFalse, 1)
	patchAt := len(c.Code)
	c.WriteByte(0, 1)
	c.WriteByte(0, 1)
	c.WriteOp(OpLoadNil, 1)
	c.WriteOp(OpLoadNil, 1)
	require.NoError(t, c.PatchJump(patchAt))
	want := len(c.Code) - patchAt - 2
	got := int(c.Code[patchAt])<<8 | int(c.Code[patchAt+1])
	assert.Equal(t, want, got)
}

func TestConstantsCapExceeded(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		idx := c.AddConstant(stringValue("x"))
		require.Equal(t, i, idx)
	}
	// The 257th constant still appends (Chunk itself doesn't enforce the
	// cap; the compiler does, by refusing to emit a byte operand that
	// can't address it — see compiler.addConst).
	idx := c.AddConstant(stringValue("overflow"))
	assert.Equal(t, 256, idx)
	assert.Greater(t, idx, 255)
}

func TestDisassembleRendersNamesAndOperands(t *testing.T) {
	c := New()
	idx := c.AddConstant(stringValue("x"))
	c.WriteOp(OpLoadConst, 1)
	c.WriteByte(byte(idx), 1)
	c.WriteOp(OpDefGlobal, 1)
	c.WriteByte(byte(idx), 1)
	c.WriteOp(OpReturn, 2)

	out := c.Disassemble("test")
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "LOAD_CONST")
	assert.Contains(t, out, "DEF_GLOBAL")
	assert.Contains(t, out, "RETURN")
}

func TestDisassembleDecodesJumpOffset(t *testing.T) {
	c := New()
	c.WriteOp(OpJmpFalse, 1)
	patchAt := len(c.Code)
	c.WriteByte(0, 1)
	c.WriteByte(0, 1)
	c.WriteOp(OpLoadNil, 1)
	require.NoError(t, c.PatchJump(patchAt))

	out := c.Disassemble("test")
	assert.Contains(t, out, "JMP_FALSE")
	assert.Contains(t, out, "1")
}

type stringValue string

func (s stringValue) String() string { return string(s) }
