package backend

import (
	"errors"
	"fmt"

	"github.com/valerio/go-y86/y86/cpu"
	"github.com/valerio/go-y86/y86/debugger"
	"github.com/valerio/go-y86/y86/disasm"
	"github.com/valerio/go-y86/y86/input/action"
)

// FormatResult renders the reply to a dispatched command as output lines.
// Commands that move the machine print the instruction now at the program
// counter.
func FormatResult(res debugger.Result, mem cpu.Reader) []string {
	var invalid *debugger.InvalidCommandError
	if errors.As(res.Err, &invalid) {
		return []string{disasm.InvalidCommand(invalid.Command, invalid.Argument)}
	}
	if res.Err != nil {
		return []string{"# " + res.Err.Error()}
	}

	switch {
	case res.Report != nil:
		return FormatReport(*res.Report, mem)
	case res.Registers != nil:
		lines := make([]string, 0, cpu.RegisterCount)
		for _, r := range cpu.Registers() {
			lines = append(lines, disasm.Register(r, res.Registers.Register(r)))
		}
		return lines
	case res.Quad != nil:
		return []string{disasm.Quad(res.Quad.Address, res.Quad.Value)}
	}

	switch res.Action {
	case action.ListBreakpoints:
		if len(res.Breakpoints) == 0 {
			return []string{"# no breakpoints"}
		}
		lines := make([]string, 0, len(res.Breakpoints))
		for _, bp := range res.Breakpoints {
			lines = append(lines, fmt.Sprintf("0x%016x", bp))
		}
		return lines
	case action.Help:
		return Help()
	}

	return nil
}

// FormatReport renders the outcome of step, run, next or jump.
func FormatReport(r debugger.Report, mem cpu.Reader) []string {
	var lines []string
	switch r.Reason {
	case debugger.StopFault:
		lines = append(lines, fmt.Sprintf("# fault: %v", r.Err))
	case debugger.StopInterrupted:
		lines = append(lines, fmt.Sprintf("# interrupted after %d instructions", r.Executed))
	}
	return append(lines, disasm.Format(r.Instruction, mem).String())
}

// Help lists every command with its usage.
func Help() []string {
	lines := make([]string, 0, len(action.All()))
	for _, act := range action.All() {
		info := action.GetInfo(act)
		lines = append(lines, fmt.Sprintf("%-16s %s", info.Usage, info.Description))
	}
	return lines
}
