package input

import "github.com/valerio/go-y86/y86/input/action"

// DefaultKeyMap maps full screen UI keys to commands. Plain letters are left
// to the command line.
var DefaultKeyMap = map[string]action.Action{
	"F5":     action.Run,
	"F10":    action.Next,
	"F11":    action.Step,
	"F2":     action.Registers,
	"F1":     action.Help,
	"Escape": action.Quit,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
