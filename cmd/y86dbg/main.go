package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-y86/y86/backend"
	"github.com/valerio/go-y86/y86/backend/console"
	"github.com/valerio/go-y86/y86/backend/headless"
	"github.com/valerio/go-y86/y86/backend/terminal"
	"github.com/valerio/go-y86/y86/debugger"
	"github.com/valerio/go-y86/y86/loader"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running debugger", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "y86dbg"
	app.Description = "A Y86-64 simulator and debugger"
	app.Usage = "y86dbg [options] <image file> [starting PC]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "image",
			Usage: "Path to the program image",
		},
		cli.StringFlag{
			Name:  "start",
			Usage: "Starting program counter (decimal, 0x hex or 0 octal), default: first nonzero byte",
		},
		cli.BoolFlag{
			Name:  "tui",
			Usage: "Use the full screen terminal interface",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the program without interaction, resuming after breakpoints",
		},
		cli.StringSliceFlag{
			Name:  "break",
			Usage: "Set a breakpoint at a hex address before starting (repeatable)",
		},
		cli.IntFlag{
			Name:  "max-stops",
			Usage: "Number of breakpoint hits a headless run resumes from",
			Value: headless.DefaultMaxStops,
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write the final machine state to this file in headless mode",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level: debug, info, warn or error",
			Value:  "warn",
			EnvVar: "Y86DBG_LOG_LEVEL",
		},
	}
	app.Action = runDebugger
	return app
}

func runDebugger(c *cli.Context) error {
	if c.Bool("tui") && c.Bool("headless") {
		return errors.New("--tui and --headless are mutually exclusive")
	}

	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	args := c.Args()
	imagePath := c.String("image")
	if imagePath == "" {
		if len(args) == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no image path provided")
		}
		imagePath, args = args[0], args[1:]
	}

	opts := debugger.Options{}
	start := c.String("start")
	if start == "" && len(args) > 0 {
		start = args[0]
	}
	if start != "" {
		pc, err := strconv.ParseUint(start, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid program counter %q: %w", start, err)
		}
		opts.StartPC, opts.HasStartPC = pc, true
	}

	image, err := loader.Open(imagePath)
	if err != nil {
		return err
	}

	session, err := debugger.New(image, opts)
	if err != nil {
		closeLogged("image", image.Close)
		return err
	}
	defer closeLogged("session", session.Close)

	for _, arg := range c.StringSlice("break") {
		address, err := debugger.ParseAddress(arg)
		if err != nil {
			return err
		}
		session.Break(address)
	}

	b := selectBackend(c)
	config := backend.BackendConfig{
		Title:     "y86dbg: " + imagePath,
		ImagePath: imagePath,
		Callbacks: backend.BackendCallbacks{
			OnQuit: func() { slog.Debug("Quit requested") },
		},
	}

	if err := b.Init(config); err != nil {
		return err
	}
	defer closeLogged("backend", b.Cleanup)

	stop := interruptOnSignal(session)
	defer stop()

	return b.Run(session)
}

// closeLogged runs a cleanup step whose failure must not mask the result
// of the run.
func closeLogged(what string, cleanup func() error) {
	if err := cleanup(); err != nil {
		slog.Warn("Cleanup failed", "what", what, "error", err)
	}
}

func selectBackend(c *cli.Context) backend.Backend {
	switch {
	case c.Bool("tui"):
		return terminal.New()
	case c.Bool("headless"):
		return headless.New(c.Int("max-stops"), headless.CreateSnapshotConfig(c.String("snapshot")))
	default:
		return console.New(os.Stdin, os.Stdout)
	}
}

// interruptOnSignal turns SIGINT into an interrupt of the running command
// instead of killing the process.
func interruptOnSignal(session *debugger.Session) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT)

	go func() {
		for range signals {
			slog.Info("Interrupt")
			session.Interrupt()
		}
	}()

	return func() {
		signal.Stop(signals)
		close(signals)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
