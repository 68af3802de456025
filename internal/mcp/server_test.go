package mcp

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/ipc"
	"github.com/1broseidon/winterdesk/internal/wm"
)

// sessionDesktop answers tool calls from an in-process session instead of a
// socket.
type sessionDesktop struct {
	sess *desktop.Session
	err  error
}

func (d *sessionDesktop) GetStatus() (*ipc.StatusData, error) {
	if d.err != nil {
		return nil, d.err
	}
	st := d.sess.Status()
	return &st, nil
}

func (d *sessionDesktop) Exec(line string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.sess.Exec(line), nil
}

func (d *sessionDesktop) ListWindows() (*ipc.WindowsData, error) {
	if d.err != nil {
		return nil, d.err
	}
	focused, _ := d.sess.Windows.Focused()
	return &ipc.WindowsData{Windows: d.sess.Windows.Windows(), Focused: focused}, nil
}

func (d *sessionDesktop) WindowAction(id, action string) error {
	if d.err != nil {
		return d.err
	}
	a, err := desktop.ParseAction(action)
	if err != nil {
		return err
	}
	return d.sess.WindowAction(id, a)
}

func (d *sessionDesktop) Burst(col, row, count int) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if err := d.sess.CheckBurst(count); err != nil {
		return 0, err
	}
	return d.sess.Burst(col, row, count), nil
}

func (d *sessionDesktop) Arrange(mode string) error {
	if d.err != nil {
		return d.err
	}
	m, err := wm.ParseArrangeMode(mode)
	if err != nil {
		return err
	}
	return d.sess.Arrange(m)
}

func newTestServer(t *testing.T) (*Server, *sessionDesktop) {
	t.Helper()
	sess, err := desktop.New(config.DefaultConfig(), desktop.WithRand(rand.New(rand.NewPCG(5, 6))))
	if err != nil {
		t.Fatalf("desktop.New: %v", err)
	}
	sess.Resize(100, 30)
	d := &sessionDesktop{sess: sess}
	return NewServer(d, nil), d
}

func TestRunCommand(t *testing.T) {
	s, d := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleRunCommand(ctx, nil, RunCommandInput{Command: "snow 120"})
	if err != nil {
		t.Fatalf("run_command: %v", err)
	}
	if !strings.Contains(out.Output, "Snow intensity set to 120 particles") {
		t.Fatalf("unexpected output %q", out.Output)
	}
	if got := d.sess.Field.Count(); got != 120 {
		t.Fatalf("field count = %d, want 120", got)
	}

	if _, _, err := s.handleRunCommand(ctx, nil, RunCommandInput{Command: "   "}); err == nil {
		t.Fatalf("expected error for blank command")
	}
}

func TestListWindowsAndActions(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "files", Action: "open"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out.Window.State != "focused" || out.Action != "open" {
		t.Fatalf("unexpected action output %+v", out)
	}
	if _, _, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "about", Action: "open"}); err != nil {
		t.Fatalf("open about: %v", err)
	}
	if _, _, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "about", Action: "minimize"}); err != nil {
		t.Fatalf("minimize about: %v", err)
	}

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	states := map[string]string{}
	for _, w := range list.Windows {
		states[w.ID] = w.State
	}
	want := map[string]string{"terminal": "closed", "about": "minimized", "files": "open", "settings": "closed"}
	for id, st := range want {
		if states[id] != st {
			t.Fatalf("%s state = %q, want %q (all: %v)", id, states[id], st, states)
		}
	}
	if list.Focused != "" {
		t.Fatalf("focused = %q, want none after minimizing the top window", list.Focused)
	}
}

func TestWindowActionErrors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   WindowActionInput
		want error
	}{
		{"missing id", WindowActionInput{Action: "open"}, nil},
		{"unknown action", WindowActionInput{ID: "about", Action: "explode"}, desktop.ErrUnknownAction},
		{"unknown window", WindowActionInput{ID: "nope", Action: "open"}, wm.ErrUnknownWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleWindowAction(ctx, nil, tt.in)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("error %v is not %v", err, tt.want)
			}
		})
	}
}

func TestSnowBurst(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleSnowBurst(ctx, nil, SnowBurstInput{Col: 10, Row: 5})
	if err != nil {
		t.Fatalf("burst: %v", err)
	}
	if out.Particles != 230 {
		t.Fatalf("particles = %d, want 230", out.Particles)
	}
	if _, _, err := s.handleSnowBurst(ctx, nil, SnowBurstInput{Col: -1}); err == nil {
		t.Fatalf("expected error for negative col")
	}
	if _, _, err := s.handleSnowBurst(ctx, nil, SnowBurstInput{Count: maxBurstCount + 1}); err == nil {
		t.Fatalf("expected error above the hard ceiling")
	}
	_, _, err = s.handleSnowBurst(ctx, nil, SnowBurstInput{Count: 601})
	if !errors.Is(err, desktop.ErrBurstSize) {
		t.Fatalf("expected the desktop to refuse 601 flakes, got %v", err)
	}
}

func TestDesktopStatus(t *testing.T) {
	s, d := newTestServer(t)

	_, st, err := s.handleDesktopStatus(context.Background(), nil, DesktopStatusInput{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Cols != 100 || st.Rows != 30 || st.SessionID != d.sess.ID.String() {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestArrangeWindows(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	for _, id := range []string{"terminal", "about", "files"} {
		if _, _, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: id, Action: "open"}); err != nil {
			t.Fatalf("open %s: %v", id, err)
		}
	}

	_, out, err := s.handleArrangeWindows(ctx, nil, ArrangeWindowsInput{Mode: "cascade"})
	if err != nil {
		t.Fatalf("arrange: %v", err)
	}
	if out.Mode != "cascade" {
		t.Fatalf("mode = %q", out.Mode)
	}
	var shown []WindowInfo
	for _, w := range out.Windows {
		if w.State != "closed" {
			shown = append(shown, w)
		}
	}
	if len(shown) != 3 || shown[0].X != 3 || shown[0].Y != 2 || shown[1].X != 6 || shown[1].Y != 4 {
		t.Fatalf("unexpected cascade %+v", shown)
	}

	if _, _, err := s.handleArrangeWindows(ctx, nil, ArrangeWindowsInput{Mode: "spiral"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestToolsSurfaceDesktopErrors(t *testing.T) {
	s, d := newTestServer(t)
	d.err = errors.New("failed to connect to desktop")

	if _, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{}); err == nil {
		t.Fatalf("expected connection error")
	}
	if _, _, err := s.handleDesktopStatus(context.Background(), nil, DesktopStatusInput{}); err == nil {
		t.Fatalf("expected connection error")
	}
}
