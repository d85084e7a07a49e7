// Package console implements the line oriented debugger front end.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/term"

	"github.com/valerio/go-y86/y86/backend"
	"github.com/valerio/go-y86/y86/debugger"
	"github.com/valerio/go-y86/y86/disasm"
	"github.com/valerio/go-y86/y86/input"
)

const prompt = "> "

// fdReader is implemented by *os.File.
type fdReader interface {
	Fd() uintptr
}

// Backend reads commands from in and writes replies to out.
type Backend struct {
	config backend.BackendConfig
	in     io.Reader
	out    io.Writer
	prompt bool
}

// New creates a console backend. The prompt is only printed when in is a
// terminal.
func New(in io.Reader, out io.Writer) *Backend {
	return &Backend{in: in, out: out}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	b.config = config

	if f, ok := b.in.(fdReader); ok {
		b.prompt = term.IsTerminal(int(f.Fd()))
	}

	slog.Debug("Console backend initialized", "prompt", b.prompt)
	return nil
}

// Run reads commands until quit or the end of the input.
func (b *Backend) Run(session *debugger.Session) error {
	fmt.Fprintf(b.out, "# Opened %s, starting PC 0x%X\n", b.config.ImagePath, session.CPU().GetPC())
	b.println(disasm.Format(session.Current(), session.Memory()).String())

	reader := input.NewReader(b.in)
	for {
		if b.prompt {
			fmt.Fprint(b.out, prompt)
		}

		cmd, err := reader.ReadCommand()
		if errors.Is(err, io.EOF) {
			slog.Debug("End of input")
			return nil
		}
		if errors.Is(err, input.ErrCommandTooLong) {
			b.println("# " + err.Error())
			continue
		}
		if err != nil {
			return err
		}
		if cmd.IsZero() {
			continue
		}

		session.ResetInterrupt()
		res := session.Dispatch(cmd.Name, cmd.Arg)
		for _, line := range backend.FormatResult(res, session.Memory()) {
			b.println(line)
		}

		if b.config.Callbacks.OnCommand != nil {
			b.config.Callbacks.OnCommand(cmd.Name, cmd.Arg, res)
		}

		if res.Quit {
			if b.config.Callbacks.OnQuit != nil {
				b.config.Callbacks.OnQuit()
			}
			return nil
		}
	}
}

func (b *Backend) Cleanup() error {
	return nil
}

func (b *Backend) println(line string) {
	fmt.Fprintln(b.out, line)
}
