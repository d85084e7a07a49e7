// Package disasm renders decoded instructions and debugger reports as text.
package disasm

import (
	"fmt"
	"strings"

	"github.com/valerio/go-y86/y86/cpu"
)

// maxInstructionBytes is the longest encoding, used to align the mnemonic column.
const maxInstructionBytes = 10

// Line is a single disassembled instruction.
type Line struct {
	Address uint64
	Bytes   []byte
	Text    string
}

func (l Line) String() string {
	var hex strings.Builder
	for _, b := range l.Bytes {
		fmt.Fprintf(&hex, "%02x", b)
	}
	return fmt.Sprintf("0x%016x: %-*s  %s", l.Address, maxInstructionBytes*2, hex.String(), l.Text)
}

// Format disassembles instr, reading its encoded bytes back from mem.
func Format(instr cpu.Instruction, mem cpu.Reader) Line {
	return Line{
		Address: instr.Location,
		Bytes:   encoded(instr, mem),
		Text:    Mnemonic(instr),
	}
}

// At decodes and disassembles the instruction at address.
func At(address uint64, mem cpu.Reader) Line {
	return Format(cpu.Decode(mem, address), mem)
}

// Range disassembles up to count instructions from address, stopping after
// the first one that does not fall through to a following instruction.
func Range(address uint64, count int, mem cpu.Reader) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		instr := cpu.Decode(mem, address)
		lines = append(lines, Format(instr, mem))
		if !instr.IsExecutable() {
			break
		}
		address = instr.Next
	}
	return lines
}

// Mnemonic renders instr in AT&T syntax.
func Mnemonic(instr cpu.Instruction) string {
	switch instr.Opcode {
	case cpu.OpHalt, cpu.OpNop, cpu.OpRet:
		return instr.Opcode.String()
	case cpu.OpMoveCond:
		return fmt.Sprintf("%s %s, %s", moveName(instr.Condition()), instr.RegA, instr.RegB)
	case cpu.OpSetImm:
		return fmt.Sprintf("irmovq $0x%x, %s", instr.Immediate, instr.RegB)
	case cpu.OpStore:
		return fmt.Sprintf("rmmovq %s, %s", instr.RegA, memOperand(instr))
	case cpu.OpLoad:
		return fmt.Sprintf("mrmovq %s, %s", memOperand(instr), instr.RegA)
	case cpu.OpALU:
		return fmt.Sprintf("%s %s, %s", instr.ALUFunc(), instr.RegA, instr.RegB)
	case cpu.OpJump:
		return fmt.Sprintf("j%s 0x%x", jumpSuffix(instr.Condition()), instr.Immediate)
	case cpu.OpCall:
		return fmt.Sprintf("call 0x%x", instr.Immediate)
	case cpu.OpPush, cpu.OpPop:
		return fmt.Sprintf("%s %s", instr.Opcode, instr.RegA)
	case cpu.OpInvalid:
		return "# invalid instruction"
	case cpu.OpTooShort:
		return "# instruction too short"
	default:
		return fmt.Sprintf("# %s", instr.Opcode)
	}
}

func jumpSuffix(c cpu.Condition) string {
	if c == cpu.CondNone {
		return "mp"
	}
	return c.Suffix()
}

func moveName(c cpu.Condition) string {
	if c == cpu.CondNone {
		return "rrmovq"
	}
	return "cmov" + c.Suffix()
}

func memOperand(instr cpu.Instruction) string {
	return fmt.Sprintf("0x%x(%s)", instr.Immediate, instr.RegB)
}

// encoded returns the bytes instr was decoded from. Instructions that could
// not be decoded show the single byte at their location, if any.
func encoded(instr cpu.Instruction, mem cpu.Reader) []byte {
	n := instr.Length()
	if n == 0 {
		n = 1
	}

	out := make([]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := mem.Read(instr.Location + i)
		if err != nil {
			break
		}
		out = append(out, b)
	}
	return out
}

// Register renders a register value for the registers command.
func Register(reg cpu.Register, value uint64) string {
	return fmt.Sprintf("%-5s 0x%016x  %d", reg, value, int64(value))
}

// Quad renders a memory word for the examine command.
func Quad(address, value uint64) string {
	return fmt.Sprintf("0x%016x: 0x%016x  %d", address, value, int64(value))
}

// InvalidCommand renders the reply to an unusable command line.
func InvalidCommand(command, arg string) string {
	if arg == "" {
		return fmt.Sprintf("# Invalid command: %s", command)
	}
	return fmt.Sprintf("# Invalid command: %s %s", command, arg)
}
