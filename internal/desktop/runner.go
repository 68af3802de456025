package desktop

import (
	"context"
	"sync"
	"time"

	"github.com/1broseidon/winterdesk/internal/shell"
)

// Runner executes fn against the session on whichever goroutine owns it. The
// TUI implements it by marshalling fn into its update loop; Locked serves a
// session nobody else drives.
type Runner interface {
	Do(ctx context.Context, fn func(*Session) (any, error)) (any, error)
}

// Locked serializes access to a session with a mutex. It also plays the
// frontend's part for delayed shell output: lines queued with Shell.Later are
// printed on timers, unless a reload has replaced the shell in the meantime.
type Locked struct {
	mu     sync.Mutex
	s      *Session
	timers map[*time.Timer]struct{}
	closed bool

	afterFunc func(time.Duration, func()) *time.Timer
}

func NewLocked(s *Session) *Locked {
	return &Locked{
		s:         s,
		timers:    make(map[*time.Timer]struct{}),
		afterFunc: time.AfterFunc,
	}
}

func (l *Locked) Do(ctx context.Context, fn func(*Session) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	v, err := fn(l.s)
	l.scheduleDelayed()
	return v, err
}

// Close stops pending delayed output. Later calls to Do still work but queue
// nothing.
func (l *Locked) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for t := range l.timers {
		t.Stop()
	}
	clear(l.timers)
}

// scheduleDelayed must be called with l.mu held.
func (l *Locked) scheduleDelayed() {
	sh := l.s.Shell
	pending := sh.TakeDelayed()
	if l.closed {
		return
	}
	for _, d := range pending {
		var t *time.Timer
		t = l.afterFunc(d.After, func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.timers, t)
			l.printDelayed(sh, d.Lines)
		})
		l.timers[t] = struct{}{}
	}
}

func (l *Locked) printDelayed(sh *shell.Shell, lines []string) {
	if l.closed || l.s.Shell != sh {
		return
	}
	sh.Println(lines...)
}
