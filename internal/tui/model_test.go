package tui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/wm"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestModel(t *testing.T) (*model, *ManualScheduler, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
	sess, err := desktop.New(config.DefaultConfig(),
		desktop.WithRand(rand.New(rand.NewPCG(1, 2))),
		desktop.WithClock(clock.Now),
	)
	if err != nil {
		t.Fatalf("desktop.New: %v", err)
	}
	sched := &ManualScheduler{}
	m := newModel(sess, sched)
	m.copyFn = func(string) error { return nil }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, sched, clock
}

func press(m *model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func motion(m *model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
}

func release(m *model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func typeText(m *model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func alt(m *model, r rune) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true})
}

func keyType(m *model, k tea.KeyType) {
	m.Update(tea.KeyMsg{Type: k})
}

func mustWindow(t *testing.T, m *model, id string) wm.Window {
	t.Helper()
	w, err := m.sess.Windows.Window(id)
	if err != nil {
		t.Fatalf("window %s: %v", id, err)
	}
	return w
}

func state(t *testing.T, m *model, id string) wm.State {
	t.Helper()
	st, err := m.sess.Windows.State(id)
	if err != nil {
		t.Fatalf("state %s: %v", id, err)
	}
	return st
}

func TestInitOpensTerminalAfterDelay(t *testing.T) {
	m, sched, _ := newTestModel(t)

	if cmd := m.Init(); cmd == nil {
		t.Fatalf("expected init command")
	}
	if sched.Requested() != 1 {
		t.Fatalf("requested %d frames, want 1", sched.Requested())
	}
	if st := state(t, m, "terminal"); st != wm.StateClosed {
		t.Fatalf("terminal %v before delay", st)
	}

	m.Update(openStartMsg{})
	if st := state(t, m, "terminal"); st != wm.StateOpenFocused {
		t.Fatalf("terminal %v after delay, want focused", st)
	}
}

func TestFrameRequestsNextFrame(t *testing.T) {
	m, sched, _ := newTestModel(t)
	for i := 0; i < 3; i++ {
		m.Update(FrameMsg{})
	}
	if sched.Requested() != 3 {
		t.Fatalf("requested %d frames, want 3", sched.Requested())
	}
}

func TestTitleBarDrag(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 'a')

	press(m, 30, 6)
	if id, ok := m.sess.Windows.Dragging(); !ok || id != "about" {
		t.Fatalf("expected drag of about, got %q %v", id, ok)
	}
	motion(m, 35, 9)
	if r := mustWindow(t, m, "about").Rect; r.X != 29 || r.Y != 9 {
		t.Fatalf("about at (%d,%d), want (29,9)", r.X, r.Y)
	}
	release(m, 35, 9)
	motion(m, 50, 15)
	if r := mustWindow(t, m, "about").Rect; r.X != 29 || r.Y != 9 {
		t.Fatalf("about moved after release: (%d,%d)", r.X, r.Y)
	}
}

func TestTitleButtons(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 'a')
	// about is 46 wide at x=24: buttons at 57, 61 and 65.
	press(m, 62, 6)
	w := mustWindow(t, m, "about")
	if !w.Maximized || w.Rect != m.sess.Windows.WorkArea() {
		t.Fatalf("expected maximized to work area, got %+v", w)
	}

	press(m, 100-13+5, 0)
	w = mustWindow(t, m, "about")
	if w.Maximized || w.Rect != (wm.Rect{X: 24, Y: 6, Width: 46, Height: 14}) {
		t.Fatalf("expected original geometry back, got %+v", w)
	}

	press(m, 58, 6)
	if st := state(t, m, "about"); st != wm.StateMinimized {
		t.Fatalf("about %v, want minimized", st)
	}

	alt(m, 'a')
	press(m, 66, 6)
	if st := state(t, m, "about"); st != wm.StateClosed {
		t.Fatalf("about %v, want closed", st)
	}
}

func TestBackgroundClickBursts(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, 2, 2)
	if n := m.sess.Field.Len(); n != 230 {
		t.Fatalf("flakes = %d, want 230", n)
	}
}

func TestBodyClickFocuses(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 'a')
	alt(m, 'f')
	// (26, 10) is inside about and outside files.
	press(m, 26, 10)
	if id, _ := m.sess.Windows.Focused(); id != "about" {
		t.Fatalf("focused %q, want about", id)
	}
}

func TestTaskbarClicks(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 'a')
	alt(m, 'f')

	slotX := func(id string) int {
		for _, s := range taskbarSlots(m.sess.Windows.Taskbar(), m.width) {
			if s.ID == id {
				return s.X0 + 1
			}
		}
		t.Fatalf("no taskbar slot for %s", id)
		return 0
	}

	press(m, slotX("files"), 29)
	if st := state(t, m, "files"); st != wm.StateMinimized {
		t.Fatalf("files %v, want minimized", st)
	}
	press(m, slotX("files"), 29)
	if st := state(t, m, "files"); st != wm.StateOpenFocused {
		t.Fatalf("files %v, want focused", st)
	}
	press(m, slotX("about"), 29)
	if st := state(t, m, "about"); st != wm.StateOpenFocused {
		t.Fatalf("about %v, want focused", st)
	}
	if st := state(t, m, "files"); st != wm.StateOpenUnfocused {
		t.Fatalf("files %v, want open", st)
	}
}

func TestStartMenuClickOpensWindow(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, 1, 29)
	if !m.menu.open {
		t.Fatalf("expected start menu open")
	}
	r := menuRect(len(m.menu.Items()), m.height, m.taskbarRows())
	press(m, 5, r.Y+2) // About
	if m.menu.open {
		t.Fatalf("expected menu closed")
	}
	if st := state(t, m, "about"); st != wm.StateOpenFocused {
		t.Fatalf("about %v, want focused", st)
	}
}

func TestShutDownAndReload(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 'a')
	typeText(m, "x")

	press(m, 1, 29)
	for i := 0; i < 4; i++ {
		keyType(m, tea.KeyDown)
	}
	if it, _ := m.menu.Selected(); it.label != shutDownLabel {
		t.Fatalf("selected %q, want %q", it.label, shutDownLabel)
	}
	keyType(m, tea.KeyEnter)
	if !m.shutdown {
		t.Fatalf("expected shutdown screen")
	}
	if !strings.Contains(m.View(), shutdownText) {
		t.Fatalf("shutdown view missing message")
	}

	typeText(m, "q")
	if m.shutdown {
		t.Fatalf("expected reload on key press")
	}
	if st := state(t, m, "about"); st != wm.StateClosed {
		t.Fatalf("about %v after reload, want closed", st)
	}
	if n := m.sess.Status().Reloads; n != 1 {
		t.Fatalf("reloads = %d, want 1", n)
	}
}

func TestTerminalInput(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(openStartMsg{})

	typeText(m, "snow 50")
	keyType(m, tea.KeyEnter)
	if got := m.sess.Field.Count(); got != 50 {
		t.Fatalf("count = %d, want 50", got)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
	if !strings.Contains(m.render().Plain(), "Snow intensity set to 50 particles") {
		t.Fatalf("terminal does not show command output")
	}

	keyType(m, tea.KeyUp)
	if m.input.Value() != "snow 50" {
		t.Fatalf("history up = %q", m.input.Value())
	}
	keyType(m, tea.KeyDown)
	if m.input.Value() != "" {
		t.Fatalf("history down = %q", m.input.Value())
	}

	typeText(m, "cre")
	keyType(m, tea.KeyTab)
	if m.input.Value() != "credits" {
		t.Fatalf("completion = %q, want credits", m.input.Value())
	}
}

func TestCopyTranscript(t *testing.T) {
	m, _, _ := newTestModel(t)
	var copied string
	m.copyFn = func(s string) error { copied = s; return nil }
	m.Update(openStartMsg{})
	typeText(m, "echo hi")
	keyType(m, tea.KeyEnter)

	keyType(m, tea.KeyCtrlY)
	if copied != strings.Join(m.sess.Shell.Transcript(), "\n") {
		t.Fatalf("copied %q", copied)
	}
	if !strings.HasPrefix(m.notice, "Copied ") {
		t.Fatalf("notice = %q", m.notice)
	}

	m.copyFn = func(string) error { return errors.New("no clipboard") }
	keyType(m, tea.KeyCtrlY)
	if m.notice != "Clipboard unavailable" {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestFilesWindow(t *testing.T) {
	m, _, clock := newTestModel(t)
	alt(m, 'f')
	keyType(m, tea.KeyDown)
	keyType(m, tea.KeyDown)
	keyType(m, tea.KeyEnter)
	if m.notice != "Opening PROGRAMS..." {
		t.Fatalf("notice = %q", m.notice)
	}
	if !strings.Contains(m.render().Plain(), "Opening PROGRAMS...") {
		t.Fatalf("notice not drawn")
	}

	// files is at (34,8): body starts at (35,9), entries two rows lower.
	press(m, 40, 12)
	if m.fileSel != 1 {
		t.Fatalf("selected %d, want 1", m.fileSel)
	}

	clock.t = clock.t.Add(3 * time.Second)
	m.Update(FrameMsg{})
	if m.notice != "" {
		t.Fatalf("notice should expire, got %q", m.notice)
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 't')
	alt(m, 'a')
	alt(m, 'f')

	keyType(m, tea.KeyF11)
	if !mustWindow(t, m, "files").Maximized {
		t.Fatalf("f11 should maximize the focused window")
	}
	keyType(m, tea.KeyF11)
	if mustWindow(t, m, "files").Maximized {
		t.Fatalf("second f11 should restore")
	}

	alt(m, 'g')
	stack := m.sess.Windows.Stack()
	for i := range stack {
		for j := i + 1; j < len(stack); j++ {
			a, b := stack[i].Rect, stack[j].Rect
			if a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height {
				t.Fatalf("tiled windows overlap: %+v %+v", a, b)
			}
		}
	}

	alt(m, 'g')
	if r := m.sess.Windows.Stack()[0].Rect; r.X != 3 || r.Y != 2 {
		t.Fatalf("cascade starts at (%d,%d), want (3,2)", r.X, r.Y)
	}
}

func TestAltArrowsMoveFocus(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 't')
	alt(m, 'a')
	alt(m, 'f')

	m.Update(tea.KeyMsg{Type: tea.KeyLeft, Alt: true})
	if id, _ := m.sess.Windows.Focused(); id != "terminal" {
		t.Fatalf("alt+left focused %q, want terminal", id)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	if id, _ := m.sess.Windows.Focused(); id != "about" {
		t.Fatalf("alt+right focused %q, want about", id)
	}
}

func TestSettingsApply(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.applySettings("120", "1.5")
	if m.sess.Field.Count() != 120 || m.sess.Field.Wind().Target() != 1.5 {
		t.Fatalf("settings not applied: count=%d wind=%v", m.sess.Field.Count(), m.sess.Field.Wind().Target())
	}
	if m.notice != "Settings applied" {
		t.Fatalf("notice = %q", m.notice)
	}

	m.applySettings("900", "0")
	if m.notice != "Error: Amount must be between 0 and 500" {
		t.Fatalf("notice = %q", m.notice)
	}
	if m.sess.Field.Count() != 120 {
		t.Fatalf("count changed on error: %d", m.sess.Field.Count())
	}

	alt(m, 's')
	keyType(m, tea.KeyEnter)
	if m.settings == nil {
		t.Fatalf("enter in settings should open the form")
	}
	keyType(m, tea.KeyEsc)
	if m.settings != nil {
		t.Fatalf("esc should close the form")
	}
}

func TestConfigMsg(t *testing.T) {
	m, _, _ := newTestModel(t)

	cfg := config.DefaultConfig()
	cfg.Snow.Count = 40
	m.Update(ConfigMsg{Result: &config.LoadResult{Config: cfg}})
	if m.sess.Field.Count() != 40 {
		t.Fatalf("count = %d, want 40", m.sess.Field.Count())
	}

	m.Update(ConfigMsg{Err: errors.New("bad yaml")})
	if !strings.HasPrefix(m.notice, "Config error: ") {
		t.Fatalf("notice = %q", m.notice)
	}
	if m.sess.Field.Count() != 40 {
		t.Fatalf("failed reload changed count")
	}
}

func TestDelayedOutput(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(openStartMsg{})
	typeText(m, "matrix")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("matrix should schedule delayed lines")
	}

	m.Update(delayedMsg{shell: m.sess.Shell, lines: []string{"wake up"}})
	tr := m.sess.Shell.Transcript()
	if tr[len(tr)-1] != "wake up" {
		t.Fatalf("delayed line not printed: %q", tr[len(tr)-1])
	}

	old := m.sess.Shell
	m.reload()
	m.Update(delayedMsg{shell: old, lines: []string{"stale"}})
	for _, line := range m.sess.Shell.Transcript() {
		if line == "stale" {
			t.Fatalf("output from a replaced shell was printed")
		}
	}
}

func TestRender(t *testing.T) {
	m, _, _ := newTestModel(t)
	alt(m, 'a')

	out := m.render().Plain()
	for _, want := range []string{"About Winter OS", "[_] [□] [x]", "WINTER RETRO OS", "12:00:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q", want)
		}
	}
	if line := m.render().Line(29); !strings.HasPrefix(line, startLabel) {
		t.Fatalf("taskbar row = %q", line)
	}
	if m.View() == "" {
		t.Fatalf("empty view")
	}
}

func TestBridge(t *testing.T) {
	m, _, _ := newTestModel(t)
	b := newBridge(func(msg tea.Msg) { m.Update(msg) })

	v, err := b.Do(context.Background(), func(s *desktop.Session) (any, error) {
		return s.Exec("snow 10"), nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if lines := v.([]string); len(lines) == 0 || m.sess.Field.Count() != 10 {
		t.Fatalf("unexpected result %q count=%d", lines, m.sess.Field.Count())
	}

	wantErr := errors.New("boom")
	if _, err := b.Do(context.Background(), func(*desktop.Session) (any, error) { return nil, wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want boom", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Do(ctx, func(*desktop.Session) (any, error) { return nil, nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	b.stop()
	if _, err := b.Do(context.Background(), func(*desktop.Session) (any, error) { return nil, nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestBridge_TimeoutBeforePickupNeverRuns(t *testing.T) {
	m, _, _ := newTestModel(t)
	release := make(chan struct{})
	delivered := make(chan struct{})
	b := newBridge(func(msg tea.Msg) {
		<-release
		m.Update(msg)
		close(delivered)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ran := false
	_, err := b.Do(ctx, func(s *desktop.Session) (any, error) {
		ran = true
		return s.Exec("snow 10"), nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}

	close(release)
	<-delivered
	if ran || m.sess.Field.Count() == 10 {
		t.Fatalf("work abandoned by a timed-out caller still ran")
	}
}

func TestBridge_StartedWorkIsReported(t *testing.T) {
	m, _, _ := newTestModel(t)
	b := newBridge(func(msg tea.Msg) { m.Update(msg) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := b.Do(ctx, func(s *desktop.Session) (any, error) {
		cancel()
		return s.Exec("snow 10"), nil
	})
	if err != nil {
		t.Fatalf("Do after fn started: %v", err)
	}
	if lines := v.([]string); len(lines) == 0 || m.sess.Field.Count() != 10 {
		t.Fatalf("unexpected result %q count=%d", lines, m.sess.Field.Count())
	}
}
