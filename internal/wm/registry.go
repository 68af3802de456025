// Package wm holds the desktop's window state machine: which windows are open,
// which one has focus, how they stack and where they sit. It knows nothing about
// rendering; frontends call the transition methods and redraw from the queries.
package wm

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownWindow is returned for IDs that were never registered.
	ErrUnknownWindow = errors.New("unknown window")
	// ErrDuplicateWindow is returned when an ID is registered twice.
	ErrDuplicateWindow = errors.New("window already registered")
)

const (
	DefaultTaskbarRows      = 1
	DefaultMinVisibleMargin = 10
)

// Options tunes viewport-dependent behavior.
type Options struct {
	// TaskbarRows is subtracted from the viewport to get the maximized geometry.
	TaskbarRows int
	// MinVisibleMargin keeps at least this many cells of a dragged window on screen.
	MinVisibleMargin int
}

// Registry tracks every declared window. Exactly zero or one window is focused,
// and the focused window always carries the highest z value among open windows.
//
// Illegal transitions (focusing a closed window, minimizing a minimized one and
// so on) are silent no-ops. Only unknown IDs produce errors.
//
// Registry is not safe for concurrent use.
type Registry struct {
	order    []string
	windows  map[string]*Window
	initial  map[string]Rect
	focused  string
	z        int
	viewport Rect

	taskbarRows int
	margin      int

	drag      dragSession
	listeners []func([]TaskbarEntry)
}

// New creates an empty registry.
func New(opts Options) *Registry {
	if opts.TaskbarRows < 0 {
		opts.TaskbarRows = DefaultTaskbarRows
	}
	if opts.MinVisibleMargin <= 0 {
		opts.MinVisibleMargin = DefaultMinVisibleMargin
	}
	return &Registry{
		windows:     make(map[string]*Window),
		initial:     make(map[string]Rect),
		taskbarRows: opts.TaskbarRows,
		margin:      opts.MinVisibleMargin,
	}
}

// Register declares a closed window. Windows are never removed.
func (r *Registry) Register(id, title string, rect Rect) error {
	if id == "" {
		return fmt.Errorf("register window: empty id")
	}
	if _, ok := r.windows[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateWindow, id)
	}
	r.order = append(r.order, id)
	r.windows[id] = &Window{ID: id, Title: title, Rect: rect, Saved: rect}
	r.initial[id] = rect
	return nil
}

func (r *Registry) lookup(id string) (*Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, id)
	}
	return w, nil
}

// raise gives w a fresh highest z and moves focus to it.
func (r *Registry) raise(w *Window) {
	r.z++
	w.Z = r.z
	r.focused = w.ID
}

func (r *Registry) dropFocus(id string) {
	if r.focused == id {
		r.focused = ""
	}
	if r.drag.active && r.drag.id == id {
		r.drag = dragSession{}
	}
}

// Open shows a window and focuses it. A minimized window takes the restore path.
func (r *Registry) Open(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if w.Visible && w.Minimized {
		return r.Restore(id)
	}
	w.Visible = true
	r.raise(w)
	r.notify()
	return nil
}

// Focus makes an open window the focused one and puts it on top.
func (r *Registry) Focus(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.isOpen() {
		return nil
	}
	r.raise(w)
	r.notify()
	return nil
}

// Minimize hides an open window but keeps it on the taskbar.
func (r *Registry) Minimize(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.isOpen() {
		return nil
	}
	w.Minimized = true
	r.dropFocus(id)
	r.notify()
	return nil
}

// Restore brings a minimized window back, focused and on top.
func (r *Registry) Restore(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.Visible || !w.Minimized {
		return nil
	}
	w.Minimized = false
	r.raise(w)
	r.notify()
	return nil
}

// Maximize fills the work area with an open window, remembering its geometry.
// Focus is unchanged.
func (r *Registry) Maximize(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.isOpen() || w.Maximized {
		return nil
	}
	w.Saved = w.Rect
	w.Maximized = true
	w.Rect = r.WorkArea()
	r.notify()
	return nil
}

// Unmaximize puts a maximized window back exactly where it was.
func (r *Registry) Unmaximize(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.isOpen() || !w.Maximized {
		return nil
	}
	w.Maximized = false
	w.Rect = w.Saved
	r.notify()
	return nil
}

// ToggleMaximize flips the maximized flag of an open window.
func (r *Registry) ToggleMaximize(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if w.Maximized {
		return r.Unmaximize(id)
	}
	return r.Maximize(id)
}

// Close hides a window and removes it from the taskbar. The maximized flag
// survives so the window reopens the way it was left.
func (r *Registry) Close(id string) error {
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.Visible {
		return nil
	}
	w.Visible = false
	w.Minimized = false
	r.dropFocus(id)
	r.notify()
	return nil
}

// Reset closes every window and puts each back at its registered geometry.
func (r *Registry) Reset() {
	for _, id := range r.order {
		w := r.windows[id]
		rect := r.initial[id]
		*w = Window{ID: w.ID, Title: w.Title, Rect: rect, Saved: rect}
	}
	r.focused = ""
	r.z = 0
	r.drag = dragSession{}
	r.notify()
}

// SetViewport records the screen size. Maximized windows follow the new work
// area; other windows are pulled back so their origin stays reachable.
func (r *Registry) SetViewport(v Rect) {
	r.viewport = v
	work := r.WorkArea()
	for _, id := range r.order {
		w := r.windows[id]
		if w.Maximized {
			w.Rect = work
			continue
		}
		w.Rect.X = clamp(w.Rect.X, v.X, v.X+v.Width-r.margin)
		w.Rect.Y = clamp(w.Rect.Y, v.Y, v.Y+v.Height-r.margin)
	}
}

// Viewport is the full terminal area, taskbar included.
func (r *Registry) Viewport() Rect { return r.viewport }

// WorkArea is the viewport minus the taskbar rows at the bottom.
func (r *Registry) WorkArea() Rect {
	work := r.viewport
	work.Height -= r.taskbarRows
	if work.Height < 0 {
		work.Height = 0
	}
	return work
}

// State reports the lifecycle state of a window.
func (r *Registry) State(id string) (State, error) {
	w, err := r.lookup(id)
	if err != nil {
		return StateClosed, err
	}
	switch {
	case !w.Visible:
		return StateClosed, nil
	case w.Minimized:
		return StateMinimized, nil
	case r.focused == id:
		return StateOpenFocused, nil
	default:
		return StateOpenUnfocused, nil
	}
}

// Focused returns the focused window ID and whether there is one.
func (r *Registry) Focused() (string, bool) {
	return r.focused, r.focused != ""
}

// Window returns a copy of one window.
func (r *Registry) Window(id string) (Window, error) {
	w, err := r.lookup(id)
	if err != nil {
		return Window{}, err
	}
	return *w, nil
}

// Windows returns copies of all windows in registration order.
func (r *Registry) Windows() []Window {
	out := make([]Window, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.windows[id])
	}
	return out
}

// Stack returns the shown windows from bottom to top.
func (r *Registry) Stack() []Window {
	var out []Window
	for _, id := range r.order {
		if w := r.windows[id]; w.isOpen() {
			out = append(out, *w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// TopAt returns the topmost shown window containing (x, y).
func (r *Registry) TopAt(x, y int) (string, bool) {
	stack := r.Stack()
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Rect.Contains(x, y) {
			return stack[i].ID, true
		}
	}
	return "", false
}

// Taskbar lists every window that is not closed, in registration order.
func (r *Registry) Taskbar() []TaskbarEntry {
	var out []TaskbarEntry
	for _, id := range r.order {
		w := r.windows[id]
		if !w.Visible {
			continue
		}
		out = append(out, TaskbarEntry{
			ID:        id,
			Title:     w.Title,
			Active:    r.focused == id,
			Minimized: w.Minimized,
		})
	}
	return out
}

// OnChange registers fn to receive the taskbar listing after every transition.
func (r *Registry) OnChange(fn func([]TaskbarEntry)) {
	if fn != nil {
		r.listeners = append(r.listeners, fn)
	}
}

func (r *Registry) notify() {
	if len(r.listeners) == 0 {
		return
	}
	entries := r.Taskbar()
	for _, fn := range r.listeners {
		fn(entries)
	}
}
