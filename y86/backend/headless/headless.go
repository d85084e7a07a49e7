// Package headless runs a program without user interaction.
package headless

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-y86/y86/backend"
	"github.com/valerio/go-y86/y86/debug"
	"github.com/valerio/go-y86/y86/debugger"
	"github.com/valerio/go-y86/y86/disasm"
)

// DefaultMaxStops bounds how many breakpoint hits a headless run resumes from.
const DefaultMaxStops = 1000

// Backend runs the program to completion, logging every breakpoint it
// passes, and optionally saves the final machine state.
type Backend struct {
	config         backend.BackendConfig
	maxStops       int
	snapshotConfig SnapshotConfig

	// Last is the report that ended the run.
	Last debugger.Report
}

// SnapshotConfig holds configuration for the final state snapshot
type SnapshotConfig struct {
	Enabled bool
	Path    string
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(path string) SnapshotConfig {
	return SnapshotConfig{Enabled: path != "", Path: path}
}

func New(maxStops int, snapshotConfig SnapshotConfig) *Backend {
	if maxStops <= 0 {
		maxStops = DefaultMaxStops
	}
	return &Backend{
		maxStops:       maxStops,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	slog.Info("Running headless mode",
		"image", config.ImagePath,
		"max_stops", h.maxStops,
		"snapshot", h.snapshotConfig.Path)

	return nil
}

// Run resumes execution after every breakpoint until the program halts,
// faults, meets an undecodable instruction, is interrupted or the stop
// budget is spent.
func (h *Backend) Run(session *debugger.Session) error {
	stops := 0
	for {
		report := session.Run()
		h.Last = report

		line := disasm.Format(report.Instruction, session.Memory())
		if report.Reason != debugger.StopBreakpoint {
			slog.Info("Headless execution completed",
				"reason", report.Reason,
				"executed", session.CPU().GetExecuted(),
				"at", line.String())
			break
		}

		stops++
		slog.Info("Breakpoint", "hit", stops, "at", line.String(),
			"rsp", fmt.Sprintf("0x%X", session.CPU().GetSP()))

		if stops >= h.maxStops {
			slog.Warn("Stop budget spent", "stops", stops)
			break
		}
	}

	if report := h.Last; report.Reason == debugger.StopFault {
		slog.Warn("Program faulted", "error", report.Err)
	}

	if h.snapshotConfig.Enabled {
		if err := debug.SaveSnapshot(h.snapshot(session), h.snapshotConfig.Path); err != nil {
			return err
		}
	}

	if h.config.Callbacks.OnQuit != nil {
		h.config.Callbacks.OnQuit()
	}
	return nil
}

func (h *Backend) Cleanup() error {
	return nil
}

func (h *Backend) snapshot(session *debugger.Session) debug.Snapshot {
	state := session.Registers()
	return debug.Snapshot{
		CPU:         state,
		Current:     disasm.Format(session.Current(), session.Memory()),
		Reason:      h.Last.Reason.String(),
		Breakpoints: session.Breakpoints().List(),
		Stack:       debug.ExtractMemory(session.Memory(), session.CPU().GetSP(), debug.StackWindow),
	}
}
