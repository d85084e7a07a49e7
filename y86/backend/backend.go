// Package backend defines the front ends driving a debugger session.
package backend

import (
	"github.com/valerio/go-y86/y86/debugger"
)

// Backend is a front end for a debugging session: a line console, a full
// screen terminal UI or an unattended runner.
type Backend interface {
	// Init configures the backend. It is called once, before Run.
	Init(config BackendConfig) error

	// Run drives session until the user quits or the input ends.
	// The caller still owns session and closes it after Run returns.
	Run(session *debugger.Session) error

	// Cleanup releases backend resources when shutting down
	Cleanup() error
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title     string
	ImagePath string
	Callbacks BackendCallbacks
}

// BackendCallbacks allows backends to report back to the host
type BackendCallbacks struct {
	// OnQuit is called when the user asks to leave.
	OnQuit func()

	// OnCommand is called after every dispatched command (optional).
	OnCommand func(name, arg string, result debugger.Result)
}
