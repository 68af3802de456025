package tui

import (
	"github.com/mattn/go-runewidth"

	"github.com/1broseidon/winterdesk/internal/canvas"
	"github.com/1broseidon/winterdesk/internal/wm"
)

const (
	faceColor      = "#c0c0c0"
	shadowColor    = "#404040"
	activeTitle    = "#000080"
	inactiveTitle  = "#808080"
	bodyColor      = "#f4f8ff"
	inkColor       = "#000000"
	paperColor     = "#ffffff"
	terminalColor  = "#000000"
	phosphorColor  = "#33ff66"
	shutdownColor  = "#ff8c00"
	selectionColor = "#000080"
)

var (
	faceStyle     = canvas.Style{FG: inkColor, BG: faceColor}
	bodyStyle     = canvas.Style{FG: inkColor, BG: bodyColor}
	terminalStyle = canvas.Style{FG: phosphorColor, BG: terminalColor}
	selectedStyle = canvas.Style{FG: paperColor, BG: selectionColor}
)

// Title bar buttons, left to right, each three cells wide with one cell
// between them and one cell of bar after the last.
const (
	buttonMinimize = iota
	buttonMaximize
	buttonClose
	buttonCount

	buttonWidth   = 3
	buttonsWidth  = buttonCount*(buttonWidth+1) + 1
	startLabel    = "[Start]"
	taskbarFirst  = 9
	entryMaxTitle = 14
	clockWidth    = 10
	menuWidth     = 22
)

var buttonLabels = [buttonCount]string{"[_]", "[□]", "[x]"}

// titleButton reports which button, if any, covers column x of a title bar.
func titleButton(r wm.Rect, x int) (int, bool) {
	if r.Width < buttonsWidth+2 {
		return 0, false
	}
	start := r.X + r.Width - buttonsWidth
	for b := 0; b < buttonCount; b++ {
		bx := start + b*(buttonWidth+1)
		if x >= bx && x < bx+buttonWidth {
			return b, true
		}
	}
	return 0, false
}

// inner is the body of a window inside its one-cell frame and title row.
func inner(r wm.Rect) wm.Rect {
	return wm.Rect{X: r.X + 1, Y: r.Y + 1, Width: max(r.Width-2, 0), Height: max(r.Height-2, 0)}
}

// taskbarSlot is the span of one taskbar button.
type taskbarSlot struct {
	ID    string
	Label string
	X0    int
	X1    int // exclusive
	Entry wm.TaskbarEntry
}

func taskbarLabel(title string) string {
	return "[" + runewidth.Truncate(title, entryMaxTitle, "…") + "]"
}

// taskbarSlots lays the entries out after the Start button, dropping those
// that would run into the clock.
func taskbarSlots(entries []wm.TaskbarEntry, width int) []taskbarSlot {
	var out []taskbarSlot
	x := taskbarFirst
	limit := width - clockWidth
	for _, e := range entries {
		label := taskbarLabel(e.Title)
		w := runewidth.StringWidth(label)
		if x+w > limit {
			break
		}
		out = append(out, taskbarSlot{ID: e.ID, Label: label, X0: x, X1: x + w, Entry: e})
		x += w + 1
	}
	return out
}

// menuRect is where the start menu sits: above the taskbar, flush left.
func menuRect(items, height, taskbarRows int) wm.Rect {
	h := items + 2
	return wm.Rect{X: 0, Y: height - taskbarRows - h, Width: menuWidth, Height: h}
}

// drawFrame paints window chrome: shadow, frame, title bar and buttons.
func drawFrame(g *canvas.Grid, w wm.Window, active bool, body canvas.Style) {
	r := w.Rect
	shadow := canvas.Style{BG: shadowColor}
	g.Fill(r.X+1, r.Y+r.Height, r.Width, 1, ' ', shadow)
	g.Fill(r.X+r.Width, r.Y+1, 1, r.Height, ' ', shadow)

	g.Fill(r.X, r.Y, r.Width, r.Height, ' ', faceStyle)
	in := inner(r)
	g.Fill(in.X, in.Y, in.Width, in.Height, ' ', body)

	bar := canvas.Style{FG: paperColor, BG: inactiveTitle, Bold: true}
	if active {
		bar.BG = activeTitle
	}
	g.Fill(r.X, r.Y, r.Width, 1, ' ', bar)
	g.Text(r.X+1, r.Y, w.Title, bar, r.Width-buttonsWidth-2)

	if r.Width < buttonsWidth+2 {
		return
	}
	start := r.X + r.Width - buttonsWidth
	for b, label := range buttonLabels {
		g.Text(start+b*(buttonWidth+1), r.Y, label, faceStyle, buttonWidth)
	}
}
