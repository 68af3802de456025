package tui

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winterdesk/internal/desktop"
)

// ErrStopped is returned by Bridge.Do once the program has exited.
var ErrStopped = errors.New("desktop is shutting down")

var _ desktop.Runner = (*Bridge)(nil)

const (
	runPending int32 = iota
	runClaimed
	runAbandoned
)

// runMsg carries work from another goroutine into Update. Update and the
// waiting caller race to move state out of runPending: Update runs fn only if
// it wins, and a caller that gives up only returns early if it wins.
type runMsg struct {
	fn    func(*desktop.Session) (any, error)
	reply chan runResult
	state *atomic.Int32
}

// claim is called by Update before running fn.
func (m runMsg) claim() bool {
	return m.state.CompareAndSwap(runPending, runClaimed)
}

func (m runMsg) abandon() bool {
	return m.state.CompareAndSwap(runPending, runAbandoned)
}

type runResult struct {
	value any
	err   error
}

// Bridge is the desktop.Runner of a live program. Work is delivered to the
// update loop as a message and executed there, so the session is only ever
// touched by one goroutine.
type Bridge struct {
	send func(tea.Msg)

	stopOnce sync.Once
	done     chan struct{}
}

func newBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send, done: make(chan struct{})}
}

// Do runs fn on the update loop and waits for its result. When ctx ends or
// the program stops before the loop has picked fn up, fn never runs and the
// context error (or ErrStopped) is returned. Once fn has started, Do waits for
// it to finish, so an error from Do never hides an applied change.
func (b *Bridge) Do(ctx context.Context, fn func(*desktop.Session) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-b.done:
		return nil, ErrStopped
	default:
	}

	msg := runMsg{fn: fn, reply: make(chan runResult, 1), state: new(atomic.Int32)}
	// Send blocks until the loop reads the message.
	go b.send(msg)

	var err error
	select {
	case r := <-msg.reply:
		return r.value, r.err
	case <-ctx.Done():
		err = ctx.Err()
	case <-b.done:
		err = ErrStopped
	}
	if msg.abandon() {
		return nil, err
	}
	r := <-msg.reply
	return r.value, r.err
}

func (b *Bridge) stop() {
	b.stopOnce.Do(func() { close(b.done) })
}
