package cpu

import (
	"github.com/valerio/go-y86/y86/bit"
)

// Reader is the read-only view of memory the decoder needs.
type Reader interface {
	IsValidAddress(address uint64) bool
	Read(address uint64) (byte, error)
	ReadQuad(address uint64) (uint64, error)
}

// Decode reads the instruction stored at address. It never modifies memory
// or CPU state; any encoding problem is reported through the Opcode of the
// returned instruction (OpInvalid or OpTooShort).
//
// Encoding:
//
//	byte 0     icode:ifun
//	byte 1     rA:rB          rrmovq..OPq, pushq, popq
//	bytes +8   valC (LE)      irmovq, rmmovq, mrmovq, jXX, call
func Decode(mem Reader, address uint64) Instruction {
	instr := Instruction{
		RegA:     RNone,
		RegB:     RNone,
		Location: address,
		Next:     address,
	}

	first, err := mem.Read(address)
	if err != nil {
		return tooShort(instr)
	}

	op := Opcode(bit.HighNibble(first))
	fn := bit.LowNibble(first)
	instr.Opcode = op
	instr.Function = fn

	if op > OpPop {
		return invalid(instr)
	}

	if takesCondition(op) {
		if !Condition(fn).IsValid() {
			return invalid(instr)
		}
	} else if Condition(fn) != CondNone {
		return invalid(instr)
	}

	// halt keeps Next at its own location: it is never executed
	if op != OpHalt {
		instr.Next = address + 1
	}

	if hasRegisters(op) {
		specifier, err := mem.Read(instr.Next)
		if err != nil {
			return tooShort(instr)
		}

		rA := Register(bit.HighNibble(specifier))
		rB := Register(bit.LowNibble(specifier))

		// pushq and popq are deliberately left out of these checks
		if op >= OpMoveCond && op <= OpALU {
			if rB.IsNone() {
				return invalid(instr)
			}
			if op == OpSetImm {
				if !rA.IsNone() {
					return invalid(instr)
				}
			} else if rA.IsNone() {
				return invalid(instr)
			}
		}

		instr.RegA = rA
		instr.RegB = rB
		instr.Next++
	}

	if hasImmediate(op) {
		valC, err := mem.ReadQuad(instr.Next)
		if err != nil {
			return tooShort(instr)
		}

		switch op {
		case OpJump, OpCall:
			if !mem.IsValidAddress(valC) {
				return invalid(instr)
			}
		case OpStore, OpLoad:
			// Checked against the register identifier, not its contents.
			// The executor validates the real effective address.
			if !mem.IsValidAddress(valC + uint64(instr.RegB)) {
				return invalid(instr)
			}
		}

		instr.Immediate = valC
		instr.Next += 8
	}

	return instr
}

func invalid(instr Instruction) Instruction {
	return Instruction{
		Opcode:   OpInvalid,
		RegA:     RNone,
		RegB:     RNone,
		Location: instr.Location,
		Next:     instr.Location,
	}
}

func tooShort(instr Instruction) Instruction {
	return Instruction{
		Opcode:   OpTooShort,
		RegA:     RNone,
		RegB:     RNone,
		Location: instr.Location,
		Next:     instr.Location,
	}
}
