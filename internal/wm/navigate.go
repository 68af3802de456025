package wm

import "fmt"

// Direction is an arrow key direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection accepts up, down, left and right.
func ParseDirection(s string) (Direction, error) {
	for _, d := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
		if s == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q (want up, down, left or right)", s)
}

// Neighbor finds the shown window nearest to id in direction dir, comparing
// window centres by Manhattan distance. When nothing lies that way the search
// wraps to the far edge, preferring windows in the same row or column.
func (r *Registry) Neighbor(id string, dir Direction) (string, bool) {
	cur, err := r.lookup(id)
	if err != nil || !cur.isOpen() {
		return "", false
	}
	cx, cy := center(cur.Rect)

	best, bestDist := "", -1
	for _, w := range r.Stack() {
		if w.ID == id {
			continue
		}
		wx, wy := center(w.Rect)
		var ahead bool
		switch dir {
		case DirUp:
			ahead = wy < cy
		case DirDown:
			ahead = wy > cy
		case DirLeft:
			ahead = wx < cx
		case DirRight:
			ahead = wx > cx
		}
		if !ahead {
			continue
		}
		if d := abs(wx-cx) + abs(wy-cy); bestDist < 0 || d < bestDist {
			best, bestDist = w.ID, d
		}
	}
	if best != "" {
		return best, true
	}

	bestScore := 0
	for _, w := range r.Stack() {
		if w.ID == id {
			continue
		}
		wx, wy := center(w.Rect)
		var score int
		switch dir {
		case DirUp:
			score = wy*10000 - abs(wx-cx)
		case DirDown:
			score = -wy*10000 - abs(wx-cx)
		case DirLeft:
			score = wx*10000 - abs(wy-cy)
		case DirRight:
			score = -wx*10000 - abs(wy-cy)
		}
		if best == "" || score > bestScore {
			best, bestScore = w.ID, score
		}
	}
	return best, best != ""
}

// FocusDirection moves focus from the focused window to its neighbor in dir.
// Without a focused window the topmost shown window is focused.
func (r *Registry) FocusDirection(dir Direction) (string, bool) {
	id, ok := r.Focused()
	if !ok {
		stack := r.Stack()
		if len(stack) == 0 {
			return "", false
		}
		id = stack[len(stack)-1].ID
		_ = r.Focus(id)
		return id, true
	}
	next, ok := r.Neighbor(id, dir)
	if !ok {
		return id, false
	}
	_ = r.Focus(next)
	return next, true
}

func center(r Rect) (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
