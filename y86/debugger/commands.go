package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valerio/go-y86/y86/debug"
	"github.com/valerio/go-y86/y86/input/action"
)

// InvalidCommandError reports an unknown command, or a known one missing
// its required argument or given an unparsable one.
type InvalidCommandError struct {
	Command  string
	Argument string
}

func (e *InvalidCommandError) Error() string {
	if e.Argument == "" {
		return fmt.Sprintf("invalid command: %s", e.Command)
	}
	return fmt.Sprintf("invalid command: %s %s", e.Command, e.Argument)
}

// Quad is a memory word read by examine.
type Quad struct {
	Address uint64
	Value   uint64
}

// Result is the outcome of a dispatched command. Exactly one of the payload
// fields is set, depending on Action.
type Result struct {
	Action action.Action

	// Report is set by step, run, next and jump.
	Report *Report
	// Registers is set by registers.
	Registers *debug.CPUState
	// Quad is set by a successful examine.
	Quad *Quad
	// Breakpoints is set by breakpoints.
	Breakpoints []uint64

	// Err is an *InvalidCommandError, or the failure of jump or examine.
	Err error
	// Quit is set by quit and exit. The session is closed by then.
	Quit bool
}

// Dispatch runs the command name with its raw argument. Names are
// case-insensitive, address arguments are hexadecimal with an optional 0x prefix.
func (s *Session) Dispatch(name, arg string) Result {
	arg = strings.TrimSpace(arg)

	act, ok := action.Lookup(name)
	if !ok {
		return Result{Err: &InvalidCommandError{Command: name, Argument: arg}}
	}

	res := Result{Action: act}

	var address uint64
	var hasAddress bool
	if action.GetInfo(act).Argument != action.ArgNone && arg != "" {
		a, err := ParseAddress(arg)
		if err != nil {
			res.Err = &InvalidCommandError{Command: name, Argument: arg}
			return res
		}
		address, hasAddress = a, true
	}

	if action.GetInfo(act).Argument == action.ArgRequired && !hasAddress {
		res.Err = &InvalidCommandError{Command: name, Argument: arg}
		return res
	}

	switch act {
	case action.Step:
		r := s.Step()
		res.Report = &r
	case action.Run:
		r := s.Run()
		res.Report = &r
	case action.Next:
		r := s.Next()
		res.Report = &r
	case action.Jump:
		r, err := s.Jump(address)
		if err != nil {
			res.Err = err
			break
		}
		res.Report = &r
	case action.Break:
		if hasAddress {
			s.Break(address)
		}
	case action.Delete:
		if hasAddress {
			s.Delete(address)
		}
	case action.ListBreakpoints:
		res.Breakpoints = s.breakpoints.List()
	case action.Registers:
		regs := s.Registers()
		res.Registers = &regs
	case action.Examine:
		value, err := s.Examine(address)
		if err != nil {
			res.Err = fmt.Errorf("examine: %w", err)
			break
		}
		res.Quad = &Quad{Address: address, Value: value}
	case action.Help:
	case action.Quit:
		res.Quit = true
		res.Err = s.Close()
	}

	return res
}

// ParseAddress parses a hexadecimal address, with or without a 0x prefix.
func ParseAddress(arg string) (uint64, error) {
	s := strings.TrimSpace(arg)
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}

	address, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", arg, err)
	}
	return address, nil
}
