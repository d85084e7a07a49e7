package debug

import "github.com/valerio/go-y86/y86/cpu"

// CPUState contains all CPU register information for debugging
type CPUState struct {
	Registers [cpu.RegisterCount]uint64
	PC        uint64
	CC        uint8
	Flags     string
	Executed  uint64
}

// ExtractCPUState copies the register file and flags out of c.
func ExtractCPUState(c *cpu.CPU) CPUState {
	state := CPUState{
		PC:       c.GetPC(),
		CC:       c.GetCC(),
		Flags:    c.GetFlagString(),
		Executed: c.GetExecuted(),
	}

	for _, r := range cpu.Registers() {
		state.Registers[r] = c.GetRegister(r)
	}

	return state
}

// Register returns the value of r in the snapshot, zero for RNone.
func (s CPUState) Register(r cpu.Register) uint64 {
	if int(r) >= len(s.Registers) {
		return 0
	}
	return s.Registers[r]
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint64
	Bytes     []uint8
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerPaused DebuggerState = iota
	DebuggerRunning
	DebuggerStepInstruction
	DebuggerStepOver
	DebuggerStopped
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "RUNNING"
	case DebuggerStepInstruction:
		return "STEP"
	case DebuggerStepOver:
		return "NEXT"
	case DebuggerStopped:
		return "STOPPED"
	default:
		return "PAUSED"
	}
}
