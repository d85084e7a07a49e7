package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-y86/y86/memory"
)

var _ Bus = (*memory.Memory)(nil)

func newTestCPU(image []byte) (*CPU, []byte) {
	mem := memory.New(image)
	return New(mem, 0), image
}

// step decodes and executes the instruction at the program counter.
func step(t *testing.T, c *CPU) Instruction {
	t.Helper()
	instr := c.Fetch()
	require.NoError(t, c.Execute(instr), "executing %s at 0x%X", instr.Opcode, instr.Location)
	return instr
}

func TestExecuteSetImmediateThenHalt(t *testing.T) {
	c, _ := newTestCPU([]byte{0x30, 0xF0, 0x05, 0, 0, 0, 0, 0, 0, 0, 0x00})

	step(t, c)
	assert.Equal(t, uint64(5), c.GetRegister(RAX))
	assert.Equal(t, uint64(10), c.GetPC())

	halt := c.Fetch()
	assert.Equal(t, OpHalt, halt.Opcode)
	assert.ErrorIs(t, c.Execute(halt), ErrHalted)
	assert.Equal(t, uint64(10), c.GetPC())
	assert.Equal(t, uint64(1), c.GetExecuted())
}

func TestExecuteNotExecuted(t *testing.T) {
	tests := []struct {
		name  string
		instr Instruction
		err   error
	}{
		{"halt", Instruction{Opcode: OpHalt, Location: 3, Next: 3}, ErrHalted},
		{"invalid", Instruction{Opcode: OpInvalid, Location: 3, Next: 3}, ErrInvalidInstruction},
		{"too short", Instruction{Opcode: OpTooShort, Location: 3, Next: 3}, ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCPU(make([]byte, 16))
			c.SetPC(7)

			err := c.Execute(tt.instr)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrNotExecuted)
			assert.Equal(t, uint64(7), c.GetPC(), "program counter must not move")
		})
	}
}

func TestConditionHolds(t *testing.T) {
	const (
		none = 0
		zf   = uint8(ZeroFlag)
		sf   = uint8(SignFlag)
		both = zf | sf
	)

	tests := []struct {
		cond     Condition
		expected [4]bool // none, zf, sf, both
	}{
		{CondNone, [4]bool{true, true, true, true}},
		{CondLE, [4]bool{false, true, true, true}},
		{CondL, [4]bool{false, false, true, true}},
		{CondE, [4]bool{false, true, false, true}},
		{CondNE, [4]bool{true, false, true, false}},
		{CondGE, [4]bool{true, true, false, false}},
		{CondG, [4]bool{true, false, false, false}},
		{Condition(7), [4]bool{false, false, false, false}},
	}

	for _, tt := range tests {
		for i, cc := range []uint8{none, zf, sf, both} {
			assert.Equal(t, tt.expected[i], tt.cond.Holds(cc), "cond %d cc %02b", tt.cond, cc)
		}
	}
}

func TestExecuteALU(t *testing.T) {
	tests := []struct {
		name   string
		fn     ALUFunc
		b, a   uint64
		result uint64
		flags  string
	}{
		{"add", ALUAdd, 2, 3, 5, "--"},
		{"add to zero", ALUAdd, 0xFFFFFFFFFFFFFFFF, 1, 0, "-Z"},
		{"sub negative", ALUSub, 1, 2, 0xFFFFFFFFFFFFFFFF, "S-"},
		{"sub equal", ALUSub, 7, 7, 0, "-Z"},
		{"and", ALUAnd, 0b1100, 0b1010, 0b1000, "--"},
		{"xor self", ALUXor, 0x1234, 0x1234, 0, "-Z"},
		{"mul", ALUMul, 6, 7, 42, "--"},
		{"div", ALUDiv, 42, 5, 8, "--"},
		{"mod", ALUMod, 42, 5, 2, "--"},
		{"sign from bit 31 only", ALUAdd, 0x7FFFFFFF, 1, 0x80000000, "S-"},
		{"bit 63 does not set sign", ALUAdd, 0x8000000000000000, 0, 0x8000000000000000, "--"},
		{"zero needs all 64 bits clear", ALUAdd, 0x100000000, 0, 0x100000000, "--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCPU([]byte{0x60 | byte(tt.fn), 0x01})
			c.SetRegister(RAX, tt.a)
			c.SetRegister(RCX, tt.b)

			step(t, c)

			assert.Equal(t, tt.result, c.GetRegister(RCX))
			assert.Equal(t, tt.a, c.GetRegister(RAX))
			assert.Equal(t, tt.flags, c.GetFlagString())
			assert.Equal(t, uint64(2), c.GetPC())
		})
	}
}

func TestExecuteALUDivideByZero(t *testing.T) {
	for _, fn := range []ALUFunc{ALUDiv, ALUMod} {
		c, _ := newTestCPU([]byte{0x60 | byte(fn), 0x01})
		c.SetRegister(RCX, 10)
		c.setFlags(0)

		err := c.Execute(c.Fetch())
		assert.ErrorIs(t, err, ErrDivideByZero)
		assert.ErrorIs(t, err, ErrNotExecuted)
		assert.Equal(t, uint64(10), c.GetRegister(RCX))
		assert.Equal(t, "-Z", c.GetFlagString())
		assert.Equal(t, uint64(0), c.GetPC())
	}
}

func TestExecuteMove(t *testing.T) {
	c, _ := newTestCPU([]byte{0x20, 0x23})
	c.SetRegister(RDX, 99)

	step(t, c)
	assert.Equal(t, uint64(99), c.GetRegister(RBX))
	assert.Equal(t, uint64(99), c.GetRegister(RDX))
}

func TestExecuteConditionalMove(t *testing.T) {
	// The decoder only lets through unconditional moves, the executor
	// still honours the condition of a hand built instruction.
	c, _ := newTestCPU(make([]byte, 4))
	c.SetRegister(RAX, 1)

	instr := Instruction{Opcode: OpMoveCond, Function: uint8(CondE), RegA: RAX, RegB: RBX, Next: 2}
	require.NoError(t, c.Execute(instr))
	assert.Equal(t, uint64(0), c.GetRegister(RBX), "zero flag clear, no move")

	c.setFlags(0)
	require.NoError(t, c.Execute(instr))
	assert.Equal(t, uint64(1), c.GetRegister(RBX))
}

func TestExecuteStoreAndLoad(t *testing.T) {
	image := program(
		[]byte{0x40, 0x01}, quad(0x10), // rmmovq %rax, 0x10(%rcx)
		[]byte{0x50, 0x21}, quad(0x10), // mrmovq 0x10(%rcx), %rdx
		make([]byte, 16),
	)
	c, data := newTestCPU(image)
	c.SetRegister(RAX, 0x1122334455667788)
	c.SetRegister(RCX, 4)

	step(t, c)
	assert.Equal(t, byte(0x88), data[0x14], "only the low byte is stored")
	assert.Equal(t, byte(0x00), data[0x15])

	step(t, c)
	assert.Equal(t, uint64(0x88), c.GetRegister(RDX))
	assert.Equal(t, uint64(20), c.GetPC())
}

func TestExecuteStoreUsesRuntimeRegisterValue(t *testing.T) {
	// The decoder accepts this (0 + identifier 1 is in range), but %rcx
	// points far outside memory.
	image := program([]byte{0x40, 0x01}, quad(0))
	c, data := newTestCPU(image)
	c.SetRegister(RAX, 0xAB)
	c.SetRegister(RCX, 0x1000)

	instr := c.Fetch()
	require.Equal(t, OpStore, instr.Opcode)

	err := c.Execute(instr)
	assert.ErrorIs(t, err, memory.ErrOutOfBounds)
	assert.ErrorIs(t, err, ErrNotExecuted)
	assert.Equal(t, program([]byte{0x40, 0x01}, quad(0)), data)
	assert.Equal(t, uint64(0), c.GetPC())
}

func TestExecuteLoadOutOfBounds(t *testing.T) {
	c, _ := newTestCPU(program([]byte{0x50, 0x21}, quad(0)))
	c.SetRegister(RCX, 0xFFFF)
	c.SetRegister(RDX, 7)

	err := c.Execute(c.Fetch())
	assert.ErrorIs(t, err, memory.ErrOutOfBounds)
	assert.Equal(t, uint64(7), c.GetRegister(RDX))
}

func TestExecuteJump(t *testing.T) {
	tests := []struct {
		name  string
		cond  Condition
		flags uint64 // ALU result used to set the flags
		taken bool
	}{
		{"jmp", CondNone, 1, true},
		{"je taken", CondE, 0, true},
		{"je not taken", CondE, 1, false},
		{"jl taken", CondL, 0x80000000, true},
		{"jg not taken on zero", CondG, 0, false},
		{"jg taken", CondG, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := program([]byte{0x70 | byte(tt.cond)}, quad(0x0C), make([]byte, 8))
			c, _ := newTestCPU(image)
			c.setFlags(tt.flags)

			step(t, c)

			if tt.taken {
				assert.Equal(t, uint64(0x0C), c.GetPC())
			} else {
				assert.Equal(t, uint64(9), c.GetPC())
			}
		})
	}
}

func TestExecuteCallAndReturn(t *testing.T) {
	image := program(
		[]byte{0x80}, quad(0x0A), // 0x00: call 0x0A
		[]byte{0x00},       // 0x09: halt
		[]byte{0x90},       // 0x0A: ret
		make([]byte, 0x15), // stack space up to 0x20
	)
	c, data := newTestCPU(image)
	c.SetRegister(RSP, 0x20)

	step(t, c)
	assert.Equal(t, uint64(0x0A), c.GetPC())
	assert.Equal(t, uint64(0x18), c.GetSP())
	assert.Equal(t, quad(0x09), data[0x18:0x20], "return address pushed as a quad")

	step(t, c)
	assert.Equal(t, uint64(0x09), c.GetPC())
	assert.Equal(t, uint64(0x20), c.GetSP())
}

func TestExecuteCallStackOverflow(t *testing.T) {
	c, data := newTestCPU(program([]byte{0x80}, quad(0), make([]byte, 3)))
	c.SetRegister(RSP, 4) // sp - 8 wraps around

	err := c.Execute(c.Fetch())
	assert.ErrorIs(t, err, memory.ErrOutOfBounds)
	assert.Equal(t, uint64(4), c.GetSP())
	assert.Equal(t, uint64(0), c.GetPC())
	assert.Equal(t, make([]byte, 3), data[9:])
}

func TestExecuteReturnOutOfBounds(t *testing.T) {
	c, _ := newTestCPU([]byte{0x90})
	c.SetRegister(RSP, 0x100)

	err := c.Execute(c.Fetch())
	assert.ErrorIs(t, err, memory.ErrOutOfBounds)
	assert.Equal(t, uint64(0x100), c.GetSP())
}

func TestExecutePushPop(t *testing.T) {
	image := program(
		[]byte{0xA0, 0x0F}, // pushq %rax
		[]byte{0xB0, 0x3F}, // popq %rbx
		make([]byte, 12),
	)
	c, data := newTestCPU(image)
	c.SetRegister(RSP, 0x10)
	c.SetRegister(RAX, 0xCAFEBABE)

	step(t, c)
	assert.Equal(t, uint64(0x08), c.GetSP())
	assert.Equal(t, quad(0xCAFEBABE), data[0x08:0x10])

	step(t, c)
	assert.Equal(t, uint64(0x10), c.GetSP())
	assert.Equal(t, uint64(0xCAFEBABE), c.GetRegister(RBX))
	assert.Equal(t, uint64(4), c.GetPC())
}

func TestExecutePopRSP(t *testing.T) {
	image := program([]byte{0xB0, 0x4F}, make([]byte, 6), quad(0x40))
	c, _ := newTestCPU(image)
	c.SetRegister(RSP, 8)

	step(t, c)
	// the popped value is written first, then incremented like any pop
	assert.Equal(t, uint64(0x48), c.GetSP())
}

func TestExecuteNoneRegisterNeverHoldsValue(t *testing.T) {
	image := program(
		[]byte{0xB0, 0xFF}, // popq none
		make([]byte, 6),
		quad(0x1234),
	)
	c, _ := newTestCPU(image)
	c.SetRegister(RSP, 8)
	c.SetRegister(RNone, 77)

	step(t, c)
	assert.Equal(t, uint64(0), c.GetRegister(RNone))
	assert.Equal(t, uint64(16), c.GetSP())
}

func TestExecuteNop(t *testing.T) {
	c, _ := newTestCPU([]byte{0x10, 0x00})

	step(t, c)
	assert.Equal(t, uint64(1), c.GetPC())
}

func TestRegisterString(t *testing.T) {
	assert.Equal(t, "%rax", RAX.String())
	assert.Equal(t, "%rsp", RSP.String())
	assert.Equal(t, "%r14", R14.String())
	assert.Equal(t, "none", RNone.String())
	assert.Len(t, Registers(), 15)
}
