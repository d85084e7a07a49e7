package cpu

import "fmt"

// Opcode is the high nibble of an instruction's first byte (icode).
type Opcode uint8

const (
	OpHalt Opcode = iota
	OpNop
	OpMoveCond // rrmovq / cmovXX
	OpSetImm   // irmovq
	OpStore    // rmmovq
	OpLoad     // mrmovq
	OpALU      // OPq
	OpJump     // jXX
	OpCall
	OpRet
	OpPush
	OpPop

	// OpInvalid marks a well formed byte stream with an illegal field combination.
	OpInvalid Opcode = 0x10
	// OpTooShort marks an instruction whose encoding runs past the end of memory.
	OpTooShort Opcode = 0x11
)

var opcodeNames = map[Opcode]string{
	OpHalt:     "halt",
	OpNop:      "nop",
	OpMoveCond: "rrmovq",
	OpSetImm:   "irmovq",
	OpStore:    "rmmovq",
	OpLoad:     "mrmovq",
	OpALU:      "OPq",
	OpJump:     "jXX",
	OpCall:     "call",
	OpRet:      "ret",
	OpPush:     "pushq",
	OpPop:      "popq",
	OpInvalid:  "invalid",
	OpTooShort: "too short",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op%X", uint8(o))
}

// Condition is the function nibble of conditional moves and jumps.
type Condition uint8

const (
	CondNone Condition = iota // unconditional
	CondLE
	CondL
	CondE
	CondNE
	CondGE
	CondG
)

var conditionSuffixes = [...]string{
	CondNone: "",
	CondLE:   "le",
	CondL:    "l",
	CondE:    "e",
	CondNE:   "ne",
	CondGE:   "ge",
	CondG:    "g",
}

// Suffix returns the mnemonic suffix of the condition, empty for CondNone.
func (c Condition) Suffix() string {
	if int(c) < len(conditionSuffixes) {
		return conditionSuffixes[c]
	}
	return "?"
}

// IsValid reports whether c is in the [CondNone, CondG] range.
func (c Condition) IsValid() bool {
	return c <= CondG
}

// Holds evaluates the condition against the condition codes.
func (c Condition) Holds(cc uint8) bool {
	switch c {
	case CondNone:
		return true
	case CondLE:
		return cc&(uint8(ZeroFlag)|uint8(SignFlag)) != 0
	case CondL:
		return cc&uint8(SignFlag) != 0
	case CondE:
		return cc&uint8(ZeroFlag) != 0
	case CondNE:
		return cc&uint8(ZeroFlag) == 0
	case CondGE:
		return cc&uint8(SignFlag) == 0
	case CondG:
		return cc&(uint8(ZeroFlag)|uint8(SignFlag)) == 0
	default:
		return false
	}
}

// ALUFunc is the function nibble of OPq instructions.
type ALUFunc uint8

const (
	ALUAdd ALUFunc = iota
	ALUSub
	ALUAnd
	ALUXor
	ALUMul
	ALUDiv
	ALUMod
)

var aluNames = [...]string{
	ALUAdd: "addq",
	ALUSub: "subq",
	ALUAnd: "andq",
	ALUXor: "xorq",
	ALUMul: "mulq",
	ALUDiv: "divq",
	ALUMod: "modq",
}

func (f ALUFunc) String() string {
	if int(f) < len(aluNames) {
		return aluNames[f]
	}
	return "OPq?"
}

// Instruction is a decoded instruction. It is produced by Decode and never
// modified afterwards.
type Instruction struct {
	Opcode    Opcode
	Function  uint8 // ifun: a Condition or an ALUFunc depending on Opcode
	RegA      Register
	RegB      Register
	Immediate uint64 // valC
	Next      uint64 // valP
	Location  uint64
}

// Condition interprets the function nibble as a condition.
func (i Instruction) Condition() Condition {
	return Condition(i.Function)
}

// ALUFunc interprets the function nibble as an ALU operation.
func (i Instruction) ALUFunc() ALUFunc {
	return ALUFunc(i.Function)
}

// IsExecutable reports whether the instruction can be handed to Execute with
// a chance of success. HALT, INVALID and TOO-SHORT never execute.
func (i Instruction) IsExecutable() bool {
	switch i.Opcode {
	case OpHalt, OpInvalid, OpTooShort:
		return false
	default:
		return true
	}
}

// Length is the size in bytes of the encoded instruction, 0 when it could not be decoded.
func (i Instruction) Length() uint64 {
	switch i.Opcode {
	case OpInvalid, OpTooShort:
		return 0
	case OpHalt:
		return 1
	default:
		return i.Next - i.Location
	}
}

// hasRegisters reports whether the opcode carries a register specifier byte.
func hasRegisters(op Opcode) bool {
	return (op >= OpMoveCond && op <= OpALU) || op == OpPush || op == OpPop
}

// hasImmediate reports whether the opcode carries an 8 byte constant.
func hasImmediate(op Opcode) bool {
	return (op >= OpSetImm && op <= OpLoad) || op == OpJump || op == OpCall
}

// takesCondition reports whether the function nibble may hold something other than zero.
func takesCondition(op Opcode) bool {
	return op == OpSetImm || op == OpALU || op == OpJump
}
