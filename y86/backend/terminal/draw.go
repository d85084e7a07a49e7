package terminal

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-y86/y86/backend/terminal/render"
	"github.com/valerio/go-y86/y86/cpu"
)

var (
	borderStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	regStyle     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	codeStyle    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	outputStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	errorStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

func (t *Backend) render() {
	width, height := t.screen.Size()
	t.screen.Clear()

	if width < minTermWidth || height < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		render.DrawText(t.screen, 0, height/2, width, msg, errorStyle)
		return
	}

	rightX := registerWidth + 2
	rightWidth := width - rightX
	outputY := disasmHeight + 2
	logsY := outputY + outputHeight + 1
	bottom := height - 2

	render.VLine(t.screen, registerWidth, 0, bottom, borderStyle)
	render.HLine(t.screen, rightX-1, outputY-1, rightWidth+1, borderStyle)
	render.HLine(t.screen, rightX-1, logsY-1, rightWidth+1, borderStyle)
	render.HLine(t.screen, 0, registerLines+1, registerWidth, borderStyle)

	render.DrawText(t.screen, 1, 0, registerWidth-1, " Registers ", titleStyle)
	render.DrawText(t.screen, 1, registerLines+1, registerWidth-1, " Breakpoints ", titleStyle)
	title := fmt.Sprintf(" %s [%s] ", t.title(), t.status)
	render.DrawText(t.screen, rightX, 0, rightWidth, title, titleStyle)
	render.DrawText(t.screen, rightX, outputY-1, rightWidth, " Output ", titleStyle)
	logTitle := fmt.Sprintf(" Logs [%s] (F7/F8 filter) ", t.logLevel.Level())
	render.DrawText(t.screen, rightX, logsY-1, rightWidth, logTitle, titleStyle)

	t.drawRegisters(1, 1, registerWidth-1)
	t.drawBreakpoints(1, registerLines+2, registerWidth-1, bottom-registerLines-2)
	t.drawInstructions(rightX, 1, rightWidth, disasmHeight)
	t.drawOutput(rightX, outputY, rightWidth, outputHeight)
	t.drawLogs(rightX, logsY, rightWidth, bottom-logsY)

	help := " F5=run F10=next F11=step F2=registers F1=help Esc=quit | Ctrl-C interrupts run "
	render.DrawText(t.screen, 0, height-2, width, help, borderStyle)
	t.drawCommandLine(height-1, width)
}

func (t *Backend) title() string {
	if t.config.Title != "" {
		return t.config.Title
	}
	return t.config.ImagePath
}

func (t *Backend) drawRegisters(x, y, width int) {
	regs := t.view.regs
	lines := make([]string, 0, registerLines)
	for _, r := range cpu.Registers() {
		lines = append(lines, fmt.Sprintf("%-4s 0x%016x", r, regs.Register(r)))
	}
	lines = append(lines,
		fmt.Sprintf("pc   0x%016x", regs.PC),
		fmt.Sprintf("cc   %s", regs.Flags),
		fmt.Sprintf("exec %d", regs.Executed),
	)

	for i, line := range lines {
		render.DrawText(t.screen, x, y+i, width, line, regStyle)
	}
}

func (t *Backend) drawBreakpoints(x, y, width, height int) {
	for i, bp := range t.view.breakpoints {
		if i >= height {
			break
		}
		render.DrawText(t.screen, x, y+i, width, fmt.Sprintf("0x%016x", bp), codeStyle)
	}
}

func (t *Backend) drawInstructions(x, y, width, height int) {
	for i, line := range t.view.lines {
		if i >= height {
			break
		}

		marker, style := "  ", codeStyle
		if line.Address == t.view.regs.PC {
			marker, style = "→ ", currentStyle
		}
		bp := " "
		if slices.Contains(t.view.breakpoints, line.Address) {
			bp = "*"
		}

		text := fmt.Sprintf("%s%s0x%08x  %s", marker, bp, line.Address, line.Text)
		render.DrawText(t.screen, x, y+i, width, render.Truncate(text, width), style)
	}
}

func (t *Backend) drawOutput(x, y, width, height int) {
	lines := t.output
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for i, line := range lines {
		style := outputStyle
		if len(line) > 0 && line[0] == '#' {
			style = errorStyle
		}
		render.DrawText(t.screen, x, y+i, width, render.Truncate(line, width), style)
	}
}

func (t *Backend) drawLogs(x, y, width, height int) {
	if height <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for i, entry := range t.logBuffer.GetRecent(height, t.logLevel.Level()) {
		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errorStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}
		text := render.Truncate(render.FormatLogEntry(entry), width)
		render.DrawText(t.screen, x, y+i, width, text, style)
	}
}

func (t *Backend) drawCommandLine(y, width int) {
	if t.busy {
		render.DrawText(t.screen, 0, y, width, "[running] Ctrl-C to interrupt", currentStyle)
		t.screen.HideCursor()
		return
	}

	text := prompt + string(t.line)
	used := render.DrawText(t.screen, 0, y, width, text, outputStyle)
	t.screen.ShowCursor(used, y)
}
