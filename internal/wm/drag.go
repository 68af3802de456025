package wm

// dragSession is the only state that outlives a single input event.
type dragSession struct {
	active bool
	id     string
	offset Point
}

// BeginDrag starts moving a window with the pointer. Any stale session ends
// first, the window is focused and the grab offset is remembered. Closed,
// minimized and maximized windows are not draggable.
func (r *Registry) BeginDrag(id string, pointer Point) error {
	r.EndDrag()
	w, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !w.isOpen() || w.Maximized {
		return nil
	}
	r.raise(w)
	r.drag = dragSession{
		active: true,
		id:     id,
		offset: Point{X: pointer.X - w.Rect.X, Y: pointer.Y - w.Rect.Y},
	}
	r.notify()
	return nil
}

// DragTo moves the dragged window so the grab point follows the pointer. It
// reports whether a window moved.
func (r *Registry) DragTo(pointer Point) bool {
	if !r.drag.active {
		return false
	}
	return r.moveTo(r.drag.id, pointer.X-r.drag.offset.X, pointer.Y-r.drag.offset.Y)
}

// Drag moves window id by a delta, but only while a session for it is active.
func (r *Registry) Drag(id string, dx, dy int) bool {
	if !r.drag.active || r.drag.id != id {
		return false
	}
	w := r.windows[id]
	return r.moveTo(id, w.Rect.X+dx, w.Rect.Y+dy)
}

func (r *Registry) moveTo(id string, x, y int) bool {
	w := r.windows[id]
	if !w.isOpen() || w.Maximized {
		r.drag = dragSession{}
		return false
	}
	v := r.viewport
	x = clamp(x, v.X, v.X+v.Width-r.margin)
	y = clamp(y, v.Y, v.Y+v.Height-r.margin)
	if x == w.Rect.X && y == w.Rect.Y {
		return false
	}
	w.Rect.X = x
	w.Rect.Y = y
	return true
}

// EndDrag terminates the current session, if any.
func (r *Registry) EndDrag() {
	r.drag = dragSession{}
}

// Dragging returns the window being dragged.
func (r *Registry) Dragging() (string, bool) {
	return r.drag.id, r.drag.active
}

// PointerDown is called for every press. A press always ends a stuck session
// left behind by a release that never arrived.
func (r *Registry) PointerDown(Point) {
	r.EndDrag()
}
