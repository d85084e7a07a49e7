// Package terminal implements a full screen debugger UI on top of tcell.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-y86/y86/backend"
	"github.com/valerio/go-y86/y86/backend/terminal/render"
	"github.com/valerio/go-y86/y86/cpu"
	"github.com/valerio/go-y86/y86/debug"
	"github.com/valerio/go-y86/y86/debugger"
	"github.com/valerio/go-y86/y86/disasm"
	"github.com/valerio/go-y86/y86/input"
	"github.com/valerio/go-y86/y86/input/action"
)

const (
	minTermWidth  = 80
	minTermHeight = 24

	registerWidth = 28
	registerLines = cpu.RegisterCount + 3
	disasmHeight  = 9
	outputHeight  = 8
	logCapacity   = 200

	prompt = "> "

	postRetry = 10 * time.Millisecond
)

// Backend is the tcell front end. Commands typed on the bottom line or bound
// to function keys are dispatched on the event loop; run and next execute on
// a separate goroutine so Ctrl-C can interrupt them.
type Backend struct {
	screen    tcell.Screen
	config    backend.BackendConfig
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	prevLog   *slog.Logger

	session *debugger.Session
	history input.History
	line    []rune
	output  []string
	status  string
	view    view

	running bool
	busy    bool
	pending []*tcell.EventKey
}

// view is what the panels show. It is refreshed between commands only, the
// session is not touched while a command executes.
type view struct {
	regs        debug.CPUState
	lines       []disasm.Line
	breakpoints []uint64
}

// resultEvent carries the result of a command executed off the event loop.
type resultEvent struct {
	tcell.EventTime
	cmd    input.Command
	result debugger.Result
}

func New() *Backend {
	return &Backend{}
}

// NewWithScreen creates a backend drawing on screen, such as a
// tcell.SimulationScreen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logBuffer = render.NewLogBuffer(logCapacity)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)

	t.prevLog = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("Terminal backend initialized")
	return nil
}

// Run processes events until the user quits.
func (t *Backend) Run(session *debugger.Session) error {
	t.session = session
	t.running = true
	t.status = debug.DebuggerPaused.String()
	t.refresh()

	for t.running {
		t.render()
		t.screen.Show()

		switch ev := t.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			t.handleKey(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		case *resultEvent:
			t.finish(ev.cmd, ev.result)
		}
	}

	return nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	if t.prevLog != nil {
		slog.SetDefault(t.prevLog)
	}
	return nil
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF1:     "F1",
	tcell.KeyF2:     "F2",
	tcell.KeyF5:     "F5",
	tcell.KeyF10:    "F10",
	tcell.KeyF11:    "F11",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.Quit
	return mapping
}

var keyMapping = buildKeyMapping()

func (t *Backend) handleKey(ev *tcell.EventKey) {
	if t.busy {
		if ev.Key() == tcell.KeyCtrlC {
			slog.Info("Interrupt requested")
			t.session.Interrupt()
			return
		}
		t.pending = append(t.pending, ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		t.submit()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.line) > 0 {
			t.line = t.line[:len(t.line)-1]
		}
	case tcell.KeyF7:
		t.changeLogLevel(-1)
	case tcell.KeyF8:
		t.changeLogLevel(1)
	case tcell.KeyRune:
		if len(t.line) < input.MaxLine {
			t.line = append(t.line, ev.Rune())
		}
	default:
		if act, ok := keyMapping[ev.Key()]; ok {
			slog.Debug("Key event", "key", ev.Name(), "action", act)
			t.dispatch(input.Command{Name: act.String()})
		}
	}
}

func (t *Backend) submit() {
	cmd, err := t.history.Resolve(string(t.line))
	t.line = t.line[:0]
	if err != nil {
		t.output = []string{"# " + err.Error()}
		return
	}
	if cmd.IsZero() {
		return
	}
	t.dispatch(cmd)
}

func (t *Backend) dispatch(cmd input.Command) {
	act, _ := action.Lookup(cmd.Name)
	if act != action.Run && act != action.Next {
		t.finish(cmd, t.session.Dispatch(cmd.Name, cmd.Arg))
		return
	}

	t.session.ResetInterrupt()
	t.busy = true
	t.status = debug.DebuggerRunning.String()
	go func() {
		ev := &resultEvent{cmd: cmd, result: t.session.Dispatch(cmd.Name, cmd.Arg)}
		ev.SetEventNow()
		for t.screen.PostEvent(ev) != nil {
			time.Sleep(postRetry)
		}
	}()
}

// finish shows the result of cmd, then replays keys typed while it ran.
func (t *Backend) finish(cmd input.Command, res debugger.Result) {
	t.busy = false
	t.output = backend.FormatResult(res, t.session.Memory())

	if t.config.Callbacks.OnCommand != nil {
		t.config.Callbacks.OnCommand(cmd.Name, cmd.Arg, res)
	}

	if res.Quit {
		t.running = false
		if t.config.Callbacks.OnQuit != nil {
			t.config.Callbacks.OnQuit()
		}
		return
	}

	t.status = t.session.State().String()
	if res.Report != nil {
		t.status = res.Report.Reason.String()
	}
	t.refresh()

	pending := t.pending
	t.pending = nil
	for i, ev := range pending {
		t.handleKey(ev)
		if t.busy {
			t.pending = append(t.pending, pending[i+1:]...)
			return
		}
		if !t.running {
			return
		}
	}
}

func (t *Backend) refresh() {
	t.view = view{
		regs:        t.session.Registers(),
		lines:       disasm.Range(t.session.CPU().GetPC(), disasmHeight, t.session.Memory()),
		breakpoints: t.session.Breakpoints().List(),
	}
}

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel.Level()
	newLevel := oldLevel
	switch direction {
	case -1:
		switch oldLevel {
		case slog.LevelDebug:
			newLevel = slog.LevelInfo
		case slog.LevelInfo:
			newLevel = slog.LevelWarn
		case slog.LevelWarn:
			newLevel = slog.LevelError
		}
	case 1:
		switch oldLevel {
		case slog.LevelError:
			newLevel = slog.LevelWarn
		case slog.LevelWarn:
			newLevel = slog.LevelInfo
		case slog.LevelInfo:
			newLevel = slog.LevelDebug
		}
	}
	if oldLevel != newLevel {
		t.logLevel.Set(newLevel)
		slog.Warn("Log filter changed", "from", oldLevel, "to", newLevel)
	}
}
