// Package debugger implements the command driven control loop on top of the
// CPU: stepping, running to a breakpoint, stepping over calls and jumping.
package debugger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-y86/y86/cpu"
	"github.com/valerio/go-y86/y86/debug"
	"github.com/valerio/go-y86/y86/loader"
	"github.com/valerio/go-y86/y86/memory"
)

// ErrStartPC is returned when the requested starting program counter lies past the image.
var ErrStartPC = errors.New("starting program counter larger than image size")

// Image is the program buffer handed over by the loader. The session owns
// it until Close.
type Image interface {
	Bytes() []byte
	Close() error
}

// Options configures a new session.
type Options struct {
	// StartPC is used as the initial program counter when HasStartPC is set.
	// Otherwise execution starts at the first nonzero byte of the image.
	StartPC    uint64
	HasStartPC bool
}

// StopReason tells why a command left the machine where it is.
type StopReason int

const (
	StopStepped StopReason = iota
	StopJumped
	StopHalted
	StopInvalid
	StopTooShort
	StopBreakpoint
	StopReturned
	StopFault
	StopInterrupted
)

func (r StopReason) String() string {
	switch r {
	case StopStepped:
		return "stepped"
	case StopJumped:
		return "jumped"
	case StopHalted:
		return "halted"
	case StopInvalid:
		return "invalid instruction"
	case StopTooShort:
		return "instruction too short"
	case StopBreakpoint:
		return "breakpoint"
	case StopReturned:
		return "returned"
	case StopFault:
		return "fault"
	case StopInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Report is what an execution command leaves the machine looking at.
type Report struct {
	// Instruction is the decoded instruction that has not been executed yet.
	Instruction cpu.Instruction
	Reason      StopReason
	// Executed counts the instructions executed by the command.
	Executed int
	// Err holds the execution fault when Reason is StopFault.
	Err error
}

// Session is a debugging session over a single program image.
// It is not safe for concurrent use, except for Interrupt.
type Session struct {
	image       Image
	mem         *memory.Memory
	cpu         *cpu.CPU
	breakpoints *debug.Breakpoints

	// decoded at the program counter, not yet executed
	current cpu.Instruction

	state       debug.DebuggerState
	interrupted atomic.Bool
	closed      bool
}

// New starts a session on image and decodes the first instruction.
func New(image Image, opts Options) (*Session, error) {
	data := image.Bytes()
	mem := memory.New(data)

	pc := loader.FirstNonZero(data, 0)
	if opts.HasStartPC {
		if opts.StartPC > mem.Size() {
			return nil, fmt.Errorf("%w: 0x%X > 0x%X", ErrStartPC, opts.StartPC, mem.Size())
		}
		pc = opts.StartPC
	}

	s := &Session{
		image:       image,
		mem:         mem,
		cpu:         cpu.New(mem, pc),
		breakpoints: debug.NewBreakpoints(),
	}
	s.current = s.cpu.Fetch()

	slog.Info("Session started", "size", mem.Size(), "pc", fmt.Sprintf("0x%X", pc))
	return s, nil
}

// Current returns the decoded instruction at the program counter.
func (s *Session) Current() cpu.Instruction {
	return s.current
}

// CPU exposes the machine for read-only displays.
func (s *Session) CPU() *cpu.CPU {
	return s.cpu
}

// Memory exposes the machine memory for read-only displays.
func (s *Session) Memory() *memory.Memory {
	return s.mem
}

// Breakpoints returns the session breakpoint set.
func (s *Session) Breakpoints() *debug.Breakpoints {
	return s.breakpoints
}

// State returns what the session is currently doing.
func (s *Session) State() debug.DebuggerState {
	return s.state
}

// Interrupt asks a running Run or Next to stop at the next instruction
// boundary. It may be called from any goroutine. A request made while
// nothing runs is kept until a Run or Next consumes it or ResetInterrupt
// discards it.
func (s *Session) Interrupt() {
	s.interrupted.Store(true)
}

// ResetInterrupt discards a pending interrupt request. Front ends call it
// before starting a command, so that a request made while the command is
// being started is not lost.
func (s *Session) ResetInterrupt() {
	s.interrupted.Store(false)
}

// Step executes the current instruction. When it cannot be executed the
// report carries it unchanged and nothing else happens.
func (s *Session) Step() Report {
	s.state = debug.DebuggerStepInstruction
	defer s.pause()

	return s.step()
}

// Run steps once, then keeps stepping until the decoded instruction is a
// halt, invalid or too short, or sits on a breakpoint.
func (s *Session) Run() Report {
	s.state = debug.DebuggerRunning
	defer s.pause()

	report := s.step()
	if report.Reason != StopStepped {
		return report
	}

	return s.resume(report.Executed, func() bool { return false })
}

// Next behaves like Step, except that a call is executed together with
// everything it invokes: execution continues until the stack pointer gets
// back to its value before the call.
//
// Callers that leave the stack unbalanced, or return through something
// other than ret, can make this stop early or late.
func (s *Session) Next() Report {
	if s.current.Opcode != cpu.OpCall {
		return s.Step()
	}

	s.state = debug.DebuggerStepOver
	defer s.pause()

	sp := s.cpu.GetSP()

	report := s.step()
	if report.Reason != StopStepped {
		return report
	}

	return s.resume(report.Executed, func() bool { return s.cpu.GetSP() == sp })
}

// Jump moves the program counter to address and decodes there, without
// executing anything.
func (s *Session) Jump(address uint64) (Report, error) {
	if !s.mem.IsValidAddress(address) {
		return Report{Instruction: s.current}, fmt.Errorf("jump: %w: 0x%X", memory.ErrOutOfBounds, address)
	}

	s.cpu.SetPC(address)
	s.current = s.cpu.Fetch()

	slog.Debug("Jumped", "pc", fmt.Sprintf("0x%X", address))
	return Report{Instruction: s.current, Reason: StopJumped}, nil
}

// Break adds a breakpoint at address.
func (s *Session) Break(address uint64) {
	s.breakpoints.Add(address)
	slog.Debug("Breakpoint added", "address", fmt.Sprintf("0x%X", address))
}

// Delete removes the breakpoint at address, if any.
func (s *Session) Delete(address uint64) {
	s.breakpoints.Remove(address)
	slog.Debug("Breakpoint removed", "address", fmt.Sprintf("0x%X", address))
}

// Registers returns a snapshot of the register file.
func (s *Session) Registers() debug.CPUState {
	return debug.ExtractCPUState(s.cpu)
}

// Examine reads the little-endian quad word at address.
func (s *Session) Examine(address uint64) (uint64, error) {
	return s.mem.ReadQuad(address)
}

// Close ends the session: breakpoints are discarded and the image released.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.state = debug.DebuggerStopped

	s.breakpoints.Clear()
	slog.Info("Session closed", "executed", s.cpu.GetExecuted())
	return s.image.Close()
}

func (s *Session) pause() {
	s.state = debug.DebuggerPaused
}

// step executes the current instruction and decodes the next one.
func (s *Session) step() Report {
	instr := s.current

	if err := s.cpu.Execute(instr); err != nil {
		reason := stopReasonFor(instr)
		report := Report{Instruction: instr, Reason: reason}
		if reason == StopFault {
			report.Err = err
			slog.Warn("Execution fault", "at", fmt.Sprintf("0x%X", instr.Location), "error", err)
		}
		return report
	}

	s.current = s.cpu.Fetch()
	slog.Debug("Executed", "op", instr.Opcode, "at", fmt.Sprintf("0x%X", instr.Location),
		"pc", fmt.Sprintf("0x%X", s.cpu.GetPC()))

	return Report{Instruction: s.current, Reason: StopStepped, Executed: 1}
}

// resume keeps executing after a successful first step until done reports
// true or one of the automatic stop conditions is met.
func (s *Session) resume(executed int, done func() bool) Report {
	for {
		if done() {
			return Report{Instruction: s.current, Reason: StopReturned, Executed: executed}
		}

		if reason, stop := s.shouldStop(); stop {
			if reason == StopBreakpoint {
				slog.Info("Breakpoint hit", "address", fmt.Sprintf("0x%X", s.current.Location))
			}
			return Report{Instruction: s.current, Reason: reason, Executed: executed}
		}

		report := s.step()
		if report.Reason != StopStepped {
			report.Executed = executed
			return report
		}
		executed++
	}
}

func (s *Session) shouldStop() (StopReason, bool) {
	if !s.current.IsExecutable() {
		return stopReasonFor(s.current), true
	}

	if s.breakpoints.Has(s.cpu.GetPC()) {
		return StopBreakpoint, true
	}

	if s.interrupted.CompareAndSwap(true, false) {
		return StopInterrupted, true
	}

	return StopStepped, false
}

func stopReasonFor(instr cpu.Instruction) StopReason {
	switch instr.Opcode {
	case cpu.OpHalt:
		return StopHalted
	case cpu.OpInvalid:
		return StopInvalid
	case cpu.OpTooShort:
		return StopTooShort
	default:
		return StopFault
	}
}
