package cpu

import (
	"github.com/valerio/go-y86/y86/bit"
)

// Bus provides the interface to the memory the CPU runs against
type Bus interface {
	Reader
	Write(address uint64, value byte) error
	WriteQuad(address uint64, value uint64) error
}

// Flag is one of the 2 condition code bits.
type Flag uint8

const (
	ZeroFlag Flag = 0x1
	SignFlag Flag = 0x2
)

// signBit is the result bit that drives the sign flag: ALU results are
// judged on their low 32 bits.
const signBit = 31

// CPU holds the Y86 machine state: registers, condition codes and program counter.
// Memory is reached through the Bus.
type CPU struct {
	regs RegisterFile
	cc   uint8
	pc   uint64

	executed uint64

	bus Bus
}

// New returns a CPU with cleared registers, starting at pc.
func New(bus Bus, pc uint64) *CPU {
	return &CPU{
		bus: bus,
		pc:  pc,
	}
}

// Fetch decodes the instruction at the program counter without executing it.
func (c *CPU) Fetch() Instruction {
	return Decode(c.bus, c.pc)
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.cc |= uint8(flag)
		return
	}
	c.cc &^= uint8(flag)
}

// setFlags recomputes the condition codes from an ALU result.
func (c *CPU) setFlags(result uint64) {
	c.setFlagToCondition(SignFlag, bit.IsSet64(signBit, result))
	c.setFlagToCondition(ZeroFlag, result == 0)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.cc&uint8(flag) != 0
}

// Debug getter/setter methods, used by the debugger and its displays
func (c *CPU) GetPC() uint64                    { return c.pc }
func (c *CPU) SetPC(pc uint64)                  { c.pc = pc }
func (c *CPU) GetCC() uint8                     { return c.cc }
func (c *CPU) GetSP() uint64                    { return c.regs.get(RSP) }
func (c *CPU) GetRegister(r Register) uint64    { return c.regs.get(r) }
func (c *CPU) SetRegister(r Register, v uint64) { c.regs.set(r, v) }
func (c *CPU) GetExecuted() uint64              { return c.executed }

// GetFlagString returns a human-readable representation of the condition codes
func (c *CPU) GetFlagString() string {
	flags := ""
	if c.isSetFlag(SignFlag) {
		flags += "S"
	} else {
		flags += "-"
	}
	if c.isSetFlag(ZeroFlag) {
		flags += "Z"
	} else {
		flags += "-"
	}
	return flags
}
