package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg asks the model to advance the animation one step.
type FrameMsg struct {
	Time time.Time
}

// Scheduler decides when the next frame arrives. The model asks for exactly
// one frame after handling each FrameMsg.
type Scheduler interface {
	Next() tea.Cmd
}

// TickScheduler produces frames from a real timer.
type TickScheduler struct {
	Interval time.Duration
}

// NewTickScheduler returns a scheduler running at fps frames per second.
func NewTickScheduler(fps int) TickScheduler {
	if fps <= 0 {
		fps = 30
	}
	return TickScheduler{Interval: time.Second / time.Duration(fps)}
}

func (s TickScheduler) Next() tea.Cmd {
	return tea.Tick(s.Interval, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

// ManualScheduler never fires on its own. Tests count the requests and feed
// FrameMsg values themselves.
type ManualScheduler struct {
	requested int
}

func (s *ManualScheduler) Next() tea.Cmd {
	s.requested++
	return nil
}

// Requested is how many frames the model has asked for.
func (s *ManualScheduler) Requested() int { return s.requested }
