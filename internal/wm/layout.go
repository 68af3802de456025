package wm

import (
	"fmt"
	"math"
)

// ArrangeMode selects how Arrange lays out the shown windows.
type ArrangeMode string

const (
	ArrangeTile    ArrangeMode = "tile"
	ArrangeCascade ArrangeMode = "cascade"
)

const (
	tileGap      = 1
	cascadeStepX = 3
	cascadeStepY = 2
)

// ParseArrangeMode validates a mode name.
func ParseArrangeMode(s string) (ArrangeMode, error) {
	switch ArrangeMode(s) {
	case ArrangeTile, ArrangeCascade:
		return ArrangeMode(s), nil
	default:
		return "", fmt.Errorf("unknown arrange mode %q (want tile or cascade)", s)
	}
}

// CalculateGrid picks rows and columns for n windows: columns are the ceiling of
// the square root, rows whatever is needed after that.
func CalculateGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return rows, cols
}

// TilePositions splits area into a gapped grid with one slot per window.
func TilePositions(n int, area Rect, gap int) []Rect {
	if n <= 0 {
		return nil
	}
	rows, cols := CalculateGrid(n)
	cellW := (area.Width - (cols+1)*gap) / cols
	cellH := (area.Height - (rows+1)*gap) / rows

	out := make([]Rect, n)
	for i := 0; i < n; i++ {
		row, col := i/cols, i%cols
		out[i] = Rect{
			X:      area.X + gap + col*(cellW+gap),
			Y:      area.Y + gap + row*(cellH+gap),
			Width:  cellW,
			Height: cellH,
		}
	}
	return out
}

// CascadePositions staggers windows diagonally from the top-left corner,
// wrapping back once a window would run past the work area.
func CascadePositions(sizes []Rect, area Rect) []Rect {
	out := make([]Rect, len(sizes))
	x, y := area.X+cascadeStepX, area.Y+cascadeStepY
	for i, s := range sizes {
		if x+s.Width > area.X+area.Width || y+s.Height > area.Y+area.Height {
			x, y = area.X+cascadeStepX, area.Y+cascadeStepY
		}
		out[i] = Rect{X: x, Y: y, Width: s.Width, Height: s.Height}
		x += cascadeStepX
		y += cascadeStepY
	}
	return out
}

// Arrange lays out every shown window in stacking order. Maximized windows are
// unmaximized first; focus and z order are untouched.
func (r *Registry) Arrange(mode ArrangeMode) error {
	if _, err := ParseArrangeMode(string(mode)); err != nil {
		return err
	}
	stack := r.Stack()
	if len(stack) == 0 {
		return nil
	}
	work := r.WorkArea()

	var slots []Rect
	switch mode {
	case ArrangeTile:
		slots = TilePositions(len(stack), work, tileGap)
	case ArrangeCascade:
		sizes := make([]Rect, len(stack))
		for i, w := range stack {
			sizes[i] = w.Rect
			if w.Maximized {
				sizes[i] = w.Saved
			}
		}
		slots = CascadePositions(sizes, work)
	}

	for i, s := range stack {
		w := r.windows[s.ID]
		w.Maximized = false
		w.Rect = slots[i]
		w.Saved = slots[i]
	}
	r.EndDrag()
	r.notify()
	return nil
}
