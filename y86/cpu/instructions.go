package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-y86/y86/memory"
)

var (
	// ErrNotExecuted is matched by every error returned from Execute.
	ErrNotExecuted = errors.New("instruction not executed")

	ErrHalted             = fmt.Errorf("%w: halt", ErrNotExecuted)
	ErrInvalidInstruction = fmt.Errorf("%w: invalid instruction", ErrNotExecuted)
	ErrTooShort           = fmt.Errorf("%w: instruction too short", ErrNotExecuted)
	ErrDivideByZero       = fmt.Errorf("%w: division by zero", ErrNotExecuted)
)

// Execute applies instr to the machine state. The instruction is trusted to
// come from Decode, its fields are not validated again.
//
// Every memory access is computed from the runtime register values and
// checked before anything is committed: when Execute returns an error the
// registers, condition codes, program counter and memory are unchanged.
func (c *CPU) Execute(instr Instruction) error {
	switch instr.Opcode {
	case OpHalt:
		return ErrHalted
	case OpInvalid:
		return ErrInvalidInstruction
	case OpTooShort:
		return ErrTooShort
	}

	target := instr.Next
	rA, rB := instr.RegA, instr.RegB

	switch instr.Opcode {
	// nop  |1|0|
	case OpNop:

	// rrmovq / cmovXX  |2|fn|rA|rB|
	case OpMoveCond:
		if instr.Condition().Holds(c.cc) {
			c.regs.set(rB, c.regs.get(rA))
		}

	// irmovq  |3|fn|F|rB|V*8|
	case OpSetImm:
		c.regs.set(rB, instr.Immediate)

	// rmmovq  |4|0|rA|rB|D*8|  stores the low byte of rA
	case OpStore:
		address := instr.Immediate + c.regs.get(rB)
		if err := c.bus.Write(address, uint8(c.regs.get(rA))); err != nil {
			return fault(instr, err)
		}

	// mrmovq  |5|0|rA|rB|D*8|  loads a single byte into rA
	case OpLoad:
		address := instr.Immediate + c.regs.get(rB)
		value, err := c.bus.Read(address)
		if err != nil {
			return fault(instr, err)
		}
		c.regs.set(rA, uint64(value))

	// OPq  |6|fn|rA|rB|
	case OpALU:
		result, err := alu(instr.ALUFunc(), c.regs.get(rB), c.regs.get(rA))
		if err != nil {
			return err
		}
		c.regs.set(rB, result)
		c.setFlags(result)

	// jXX  |7|fn|Dest*8|
	case OpJump:
		if instr.Condition().Holds(c.cc) {
			target = instr.Immediate
		}

	// call  |8|0|Dest*8|
	case OpCall:
		// a stack pointer wrapped below zero fails the range check of the write
		sp := c.regs.get(RSP) - memory.QuadSize
		if err := c.bus.WriteQuad(sp, instr.Next); err != nil {
			return fault(instr, err)
		}
		c.regs.set(RSP, sp)
		target = instr.Immediate

	// ret  |9|0|
	case OpRet:
		sp := c.regs.get(RSP)
		value, err := c.bus.ReadQuad(sp)
		if err != nil {
			return fault(instr, err)
		}
		c.regs.set(RSP, sp+memory.QuadSize)
		target = value

	// pushq  |A|0|rA|F|
	case OpPush:
		sp := c.regs.get(RSP) - memory.QuadSize
		if err := c.bus.WriteQuad(sp, c.regs.get(rA)); err != nil {
			return fault(instr, err)
		}
		c.regs.set(RSP, sp)

	// popq  |B|0|rA|F|
	case OpPop:
		sp := c.regs.get(RSP)
		value, err := c.bus.ReadQuad(sp)
		if err != nil {
			return fault(instr, err)
		}
		c.regs.set(rA, value)
		c.regs.set(RSP, c.regs.get(RSP)+memory.QuadSize)

	default:
		return ErrInvalidInstruction
	}

	c.pc = target
	c.executed++
	return nil
}

func alu(fn ALUFunc, b, a uint64) (uint64, error) {
	switch fn {
	case ALUAdd:
		return b + a, nil
	case ALUSub:
		return b - a, nil
	case ALUAnd:
		return b & a, nil
	case ALUXor:
		return b ^ a, nil
	case ALUMul:
		return b * a, nil
	case ALUDiv:
		if a == 0 {
			return 0, ErrDivideByZero
		}
		return b / a, nil
	case ALUMod:
		if a == 0 {
			return 0, ErrDivideByZero
		}
		return b % a, nil
	default:
		return 0, ErrInvalidInstruction
	}
}

func fault(instr Instruction, err error) error {
	return fmt.Errorf("%w: %s at 0x%X: %w", ErrNotExecuted, instr.Opcode, instr.Location, err)
}
