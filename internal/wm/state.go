package wm

// State is the lifecycle state of one window as seen by the focus machine.
type State int

const (
	// StateClosed means the window is hidden and not on the taskbar.
	StateClosed State = iota
	// StateOpenUnfocused means the window is shown but another window (or none) has focus.
	StateOpenUnfocused
	// StateOpenFocused means the window is shown and receives keyboard input.
	StateOpenFocused
	// StateMinimized means the window is hidden but still listed on the taskbar.
	StateMinimized
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenUnfocused:
		return "open"
	case StateOpenFocused:
		return "focused"
	case StateMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// Window is a snapshot of one registered window.
type Window struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Rect      Rect   `json:"rect"`
	Visible   bool   `json:"visible"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
	// Saved is the geometry to restore when the window is unmaximized.
	Saved Rect `json:"saved"`
	Z     int  `json:"z"`
}

func (w *Window) isOpen() bool {
	return w.Visible && !w.Minimized
}

// TaskbarEntry is one button on the taskbar.
type TaskbarEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Active    bool   `json:"active"`
	Minimized bool   `json:"minimized"`
}
