package action

import "strings"

// Action represents a debugger command
type Action int

const (
	Unknown Action = iota

	// Execution control
	Step
	Run
	Next
	Jump

	// Breakpoints
	Break
	Delete
	ListBreakpoints

	// Inspection
	Registers
	Examine

	// Session
	Help
	Quit
)

// Category groups actions for help output
type Category int

const (
	CategoryExecution Category = iota
	CategoryBreakpoints
	CategoryInspection
	CategorySession
)

// Argument describes whether an action takes an address argument
type Argument int

const (
	ArgNone Argument = iota
	ArgOptional
	ArgRequired
)

// Info describes an action
type Info struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Category    Category
	Argument    Argument
}

var infos = map[Action]Info{
	Step:            {Name: "step", Usage: "step", Description: "Execute one instruction", Category: CategoryExecution},
	Run:             {Name: "run", Usage: "run", Description: "Run until halt, invalid instruction or breakpoint", Category: CategoryExecution},
	Next:            {Name: "next", Usage: "next", Description: "Step, executing calls as a single instruction", Category: CategoryExecution},
	Jump:            {Name: "jump", Usage: "jump <addr>", Description: "Move the program counter to addr", Category: CategoryExecution, Argument: ArgRequired},
	Break:           {Name: "break", Usage: "break <addr>", Description: "Set a breakpoint at addr", Category: CategoryBreakpoints, Argument: ArgOptional},
	Delete:          {Name: "delete", Usage: "delete <addr>", Description: "Remove the breakpoint at addr", Category: CategoryBreakpoints, Argument: ArgOptional},
	ListBreakpoints: {Name: "breakpoints", Usage: "breakpoints", Description: "List breakpoints", Category: CategoryBreakpoints},
	Registers:       {Name: "registers", Usage: "registers", Description: "Display register contents", Category: CategoryInspection},
	Examine:         {Name: "examine", Usage: "examine <addr>", Description: "Display the quad word stored at addr", Category: CategoryInspection, Argument: ArgRequired},
	Help:            {Name: "help", Usage: "help", Description: "List commands", Category: CategorySession},
	Quit:            {Name: "quit", Aliases: []string{"exit"}, Usage: "quit", Description: "Leave the debugger", Category: CategorySession},
}

var byName = func() map[string]Action {
	m := make(map[string]Action)
	for act, info := range infos {
		m[info.Name] = act
		for _, alias := range info.Aliases {
			m[alias] = act
		}
	}
	return m
}()

// GetInfo returns the description of an action
func GetInfo(act Action) Info {
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Name: "unknown"}
}

// Lookup finds the action for a command name. Names are case-insensitive
// and must match exactly, abbreviations are not accepted.
func Lookup(name string) (Action, bool) {
	act, ok := byName[strings.ToLower(name)]
	return act, ok
}

// All returns every action in declaration order
func All() []Action {
	return []Action{Step, Run, Next, Jump, Break, Delete, ListBreakpoints, Registers, Examine, Help, Quit}
}

func (a Action) String() string {
	return GetInfo(a).Name
}
