// Package render holds the drawing helpers and log capture of the terminal UI.
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// DrawText writes text at (x, y), clipped to width cells. It returns the
// number of cells used.
func DrawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	used := 0
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if used+w > width {
			break
		}
		screen.SetContent(x+used, y, ch, nil, style)
		used += w
	}
	return used
}

// Truncate shortens text to width cells, marking the cut with "...".
func Truncate(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}

// HLine draws a horizontal rule from x over width cells.
func HLine(screen tcell.Screen, x, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		screen.SetContent(x+i, y, '─', nil, style)
	}
}

// VLine draws a vertical rule from y over height cells.
func VLine(screen tcell.Screen, x, y, height int, style tcell.Style) {
	for i := 0; i < height; i++ {
		screen.SetContent(x, y+i, '│', nil, style)
	}
}
