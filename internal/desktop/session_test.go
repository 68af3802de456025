package desktop

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/wm"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestSession(t *testing.T, cfg *config.Config) (*Session, *fakeClock) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	clock := &fakeClock{t: time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)}
	s, err := New(cfg, WithRand(rand.New(rand.NewPCG(1, 2))), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, clock
}

func TestNew_RegistersDeclaredWindowsClosed(t *testing.T) {
	s, _ := newTestSession(t, nil)

	var ids []string
	for _, w := range s.Windows.Windows() {
		ids = append(ids, w.ID)
		if st, _ := s.Windows.State(w.ID); st != wm.StateClosed {
			t.Fatalf("window %s starts %v, want closed", w.ID, st)
		}
	}
	if diff := cmp.Diff([]string{"terminal", "about", "files", "settings"}, ids); diff != "" {
		t.Fatalf("window ids (-want +got):\n%s", diff)
	}
	if s.Field != nil {
		t.Fatalf("field should not exist before the first resize")
	}
}

func TestNew_DuplicateWindowFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Windows = append(cfg.Windows, cfg.Windows[0])
	_, err := New(cfg)
	if !errors.Is(err, wm.ErrDuplicateWindow) {
		t.Fatalf("expected ErrDuplicateWindow, got %v", err)
	}
}

func TestExec_SnowIsSilentBeforeResize(t *testing.T) {
	s, _ := newTestSession(t, nil)
	got := s.Exec("snow 100")
	if diff := cmp.Diff([]string{`C:\> snow 100`, ""}, got); diff != "" {
		t.Fatalf("output (-want +got):\n%s", diff)
	}
}

func TestResize_AttachesFieldAndSetsViewport(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Resize(100, 40)

	if s.Field == nil || s.Field.Len() != 200 {
		t.Fatalf("expected a seeded field of 200 bodies")
	}
	if w, h := s.Field.Size(); w != 800 || h != 640 {
		t.Fatalf("field size = %vx%v, want 800x640", w, h)
	}
	if got := s.Windows.Viewport(); got != (wm.Rect{Width: 100, Height: 40}) {
		t.Fatalf("viewport = %+v", got)
	}

	out := s.Exec("snow 100")
	if len(out) < 2 || out[1] != "Snow intensity set to 100 particles" {
		t.Fatalf("unexpected output %q", out)
	}
	if s.Field.Len() != 100 {
		t.Fatalf("expected 100 bodies, got %d", s.Field.Len())
	}

	field := s.Field
	s.Resize(50, 20)
	if s.Field != field {
		t.Fatalf("resize should keep the existing field")
	}
	if w, h := s.Field.Size(); w != 400 || h != 320 {
		t.Fatalf("field size = %vx%v, want 400x320", w, h)
	}
}

func TestResize_IgnoresEmptySize(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Resize(0, 10)
	if s.Field != nil {
		t.Fatalf("zero width must not create the field")
	}
}

func TestBurst_UsesConfiguredCount(t *testing.T) {
	s, _ := newTestSession(t, nil)
	if n := s.Burst(1, 1, 0); n != 0 {
		t.Fatalf("burst before resize = %d, want 0", n)
	}
	s.Resize(80, 24)
	if n := s.Burst(10, 5, 0); n != 230 {
		t.Fatalf("burst = %d, want 230", n)
	}
	for _, p := range s.Field.Particles()[200:] {
		if p.X != 84 || p.Y != 88 {
			t.Fatalf("burst body at (%v,%v), want cell centre (84,88)", p.X, p.Y)
		}
	}
}

func TestWindowAction(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Resize(120, 40)

	if err := s.WindowAction("terminal", ActionOpen); err != nil {
		t.Fatalf("open: %v", err)
	}
	if id, ok := s.Windows.Focused(); !ok || id != "terminal" {
		t.Fatalf("focused = %q, want terminal", id)
	}
	if err := s.WindowAction("terminal", ActionToggleMaximize); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if w, _ := s.Windows.Window("terminal"); !w.Maximized {
		t.Fatalf("expected terminal maximized")
	}
	if err := s.WindowAction("ghost", ActionFocus); !errors.Is(err, wm.ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
	if err := s.WindowAction("terminal", Action("explode")); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"open", ActionOpen, true},
		{" Close ", ActionClose, true},
		{"toggle_maximize", ActionToggleMaximize, true},
		{"TOGGLE-MAXIMIZE", ActionToggleMaximize, true},
		{"resize", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseAction(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseAction(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArrange(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Resize(120, 40)
	_ = s.WindowAction("terminal", ActionOpen)
	_ = s.WindowAction("about", ActionOpen)

	if err := s.Arrange(wm.ArrangeTile); err != nil {
		t.Fatalf("arrange: %v", err)
	}
	a, _ := s.Windows.Window("terminal")
	b, _ := s.Windows.Window("about")
	if a.Rect.X+a.Rect.Width > b.Rect.X {
		t.Fatalf("tiled windows overlap: %+v %+v", a.Rect, b.Rect)
	}
	if err := s.Arrange(wm.ArrangeMode("spiral")); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestReload_RestoresStartupState(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Resize(80, 24)
	_ = s.WindowAction("terminal", ActionOpen)
	s.Exec("snow 10")
	s.Burst(3, 3, 20)

	s.Reload()

	if _, ok := s.Windows.Focused(); ok {
		t.Fatalf("reload should close every window")
	}
	if len(s.Shell.Transcript()) != 0 || len(s.Shell.History()) != 0 {
		t.Fatalf("reload should start a fresh shell")
	}
	if s.Field.Len() != 200 || s.Field.Count() != 200 {
		t.Fatalf("reload should reseed the configured count, got %d/%d", s.Field.Len(), s.Field.Count())
	}
	s.Exec("snow 42")
	if s.Field.Len() != 42 {
		t.Fatalf("new shell should steer the new field, got %d", s.Field.Len())
	}
	if s.Status().Reloads != 1 {
		t.Fatalf("expected one reload recorded")
	}
}

func TestApplyConfig_UpdatesSnowAndShell(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Resize(80, 24)

	cfg := config.DefaultConfig()
	cfg.Snow.Count = 50
	cfg.Shell.SnowMax = 60
	s.ApplyConfig(cfg)

	if s.Field.Count() != 50 || s.Field.Len() != 50 {
		t.Fatalf("expected 50 bodies, got %d/%d", s.Field.Count(), s.Field.Len())
	}
	out := s.Exec("snow 70")
	if len(out) < 2 || out[1] != "Error: Amount must be between 0 and 60" {
		t.Fatalf("unexpected output %q", out)
	}
	if s.Config() != cfg {
		t.Fatalf("session should hold the new config")
	}
}

func TestStatus(t *testing.T) {
	s, clock := newTestSession(t, nil)
	s.Resize(80, 24)
	_ = s.WindowAction("terminal", ActionOpen)
	_ = s.WindowAction("about", ActionOpen)
	_ = s.WindowAction("about", ActionMinimize)
	s.Exec("wind 1.5")
	clock.t = clock.t.Add(5 * time.Minute)

	st := s.Status()
	if st.Uptime != "5 minutes" || st.UptimeSeconds != 300 {
		t.Fatalf("uptime = %q (%ds)", st.Uptime, st.UptimeSeconds)
	}
	if st.Focused != "" {
		t.Fatalf("minimizing the focused window should clear focus, got %q", st.Focused)
	}
	if diff := cmp.Diff([]string{"terminal", "about"}, st.OpenWindows); diff != "" {
		t.Fatalf("open windows (-want +got):\n%s", diff)
	}
	if st.Particles != 200 || st.WindTarget != 1.5 || st.Cols != 80 || st.Rows != 24 {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.SessionID != s.ID.String() {
		t.Fatalf("session id mismatch")
	}
}

func TestContent(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Windows = append(cfg.Windows, config.WindowConfig{
		ID: "notes", Kind: config.KindText, Title: "Notes", Width: 20, Height: 6,
		Lines: []string{"one", "two", "three"},
	})
	s, _ := newTestSession(t, cfg)

	if got := s.Content("about", 100); !cmp.Equal(got, AboutLines) {
		t.Fatalf("about content = %q", got)
	}
	if got := s.Content("files", 1); len(got) != 1 || got[0] != "[DIR] DOCUMENTS" {
		t.Fatalf("files content = %q", got)
	}
	if got := s.Content("notes", 2); !cmp.Equal(got, []string{"one", "two"}) {
		t.Fatalf("text content = %q", got)
	}

	s.Exec("echo hi")
	got := s.Content("terminal", 3)
	if diff := cmp.Diff([]string{"hi", "", `C:\> _`}, got); diff != "" {
		t.Fatalf("terminal tail (-want +got):\n%s", diff)
	}

	if got := s.Content("settings", 10); got[0] != "Snow amount: 200" {
		t.Fatalf("settings content = %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestSession(t, nil)
	if _, err := s.Snapshot(1); !errors.Is(err, ErrNotSized) {
		t.Fatalf("expected ErrNotSized, got %v", err)
	}

	s.Resize(40, 12)
	_ = s.WindowAction("about", ActionOpen)

	img, err := s.Snapshot(1)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 192 {
		t.Fatalf("snapshot bounds = %v, want 320x192", b)
	}
	// Left edge of the taskbar, before the Start label.
	got := img.NRGBAAt(2, 11*16+2)
	if got != (color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}) {
		t.Fatalf("taskbar pixel = %v", got)
	}

	small, err := s.Snapshot(0.5)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if b := small.Bounds(); b.Dx() != 160 || b.Dy() != 96 {
		t.Fatalf("scaled bounds = %v, want 160x96", b)
	}

	var buf bytes.Buffer
	if err := s.WriteSnapshot(&buf, 1); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\x89PNG") {
		t.Fatalf("expected PNG output")
	}
}

func TestLocked_Do(t *testing.T) {
	s, _ := newTestSession(t, nil)
	l := NewLocked(s)

	v, err := l.Do(context.Background(), func(s *Session) (any, error) {
		return s.Exec("echo hello"), nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if lines := v.([]string); lines[1] != "hello" {
		t.Fatalf("unexpected output %q", lines)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Do(ctx, func(*Session) (any, error) { return nil, nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func transcriptHas(s *Session, line string) bool {
	for _, l := range s.Shell.Transcript() {
		if l == line {
			return true
		}
	}
	return false
}

func TestLocked_PrintsDelayedOutput(t *testing.T) {
	s, _ := newTestSession(t, nil)
	l := NewLocked(s)
	l.afterFunc = func(_ time.Duration, f func()) *time.Timer { return time.AfterFunc(time.Millisecond, f) }
	t.Cleanup(l.Close)

	if _, err := l.Do(context.Background(), func(s *Session) (any, error) {
		return s.Exec("matrix"), nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		v, _ := l.Do(context.Background(), func(s *Session) (any, error) {
			return transcriptHas(s, "Knock, knock, Neo."), nil
		})
		if v.(bool) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("delayed matrix output never printed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(s.Shell.TakeDelayed()); n != 0 {
		t.Fatalf("%d delayed entries left queued", n)
	}
}

func TestLocked_DelayedOutputDroppedAfterReload(t *testing.T) {
	s, _ := newTestSession(t, nil)
	l := NewLocked(s)
	var fired []func()
	var waits []time.Duration
	l.afterFunc = func(d time.Duration, f func()) *time.Timer {
		waits = append(waits, d)
		fired = append(fired, f)
		return time.AfterFunc(time.Hour, func() {})
	}
	t.Cleanup(l.Close)

	ctx := context.Background()
	_, _ = l.Do(ctx, func(s *Session) (any, error) { return s.Exec("matrix"), nil })
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if diff := cmp.Diff(want, waits); diff != "" {
		t.Fatalf("delays mismatch (-want +got):\n%s", diff)
	}

	_, _ = l.Do(ctx, func(s *Session) (any, error) { s.Reload(); return nil, nil })
	for _, f := range fired {
		f()
	}
	v, _ := l.Do(ctx, func(s *Session) (any, error) {
		return transcriptHas(s, "The Matrix has you..."), nil
	})
	if v.(bool) {
		t.Fatalf("output from the old shell reached the reloaded one")
	}
	if len(l.timers) != 0 {
		t.Fatalf("fired timers should be forgotten, %d left", len(l.timers))
	}
}
