package cpu

import "fmt"

// Register identifies one of the general purpose registers, as encoded in
// the register specifier byte of an instruction.
type Register uint8

const (
	RAX Register = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	// RNone is the "no register" specifier. It never holds a value.
	RNone
)

// RegisterCount is the number of general purpose registers, RNone excluded.
const RegisterCount = int(RNone)

var registerNames = [...]string{
	RAX:   "%rax",
	RCX:   "%rcx",
	RDX:   "%rdx",
	RBX:   "%rbx",
	RSP:   "%rsp",
	RBP:   "%rbp",
	RSI:   "%rsi",
	RDI:   "%rdi",
	R8:    "%r8",
	R9:    "%r9",
	R10:   "%r10",
	R11:   "%r11",
	R12:   "%r12",
	R13:   "%r13",
	R14:   "%r14",
	RNone: "none",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("%%r?%X", uint8(r))
}

// IsNone reports whether r is the "no register" specifier.
func (r Register) IsNone() bool {
	return r == RNone
}

// Registers returns all general purpose registers in encoding order.
func Registers() []Register {
	regs := make([]Register, RegisterCount)
	for i := range regs {
		regs[i] = Register(i)
	}
	return regs
}

// RegisterFile holds the register values. The slot for RNone exists so that
// a register nibble can index it directly, but it always reads as zero.
type RegisterFile [RNone + 1]uint64

func (rf *RegisterFile) get(r Register) uint64 {
	if r >= RNone {
		return 0
	}
	return rf[r]
}

func (rf *RegisterFile) set(r Register, value uint64) {
	if r >= RNone {
		return
	}
	rf[r] = value
}
