package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/shell"
	"github.com/1broseidon/winterdesk/internal/wm"
)

const noticeDuration = 2 * time.Second

var buttonActions = [buttonCount]desktop.Action{
	buttonMinimize: desktop.ActionMinimize,
	buttonMaximize: desktop.ActionToggleMaximize,
	buttonClose:    desktop.ActionClose,
}

// ConfigMsg delivers a reloaded config (or the error that prevented it).
type ConfigMsg struct {
	Result *config.LoadResult
	Err    error
}

// openStartMsg opens desktop.open_on_start once the start delay has passed.
type openStartMsg struct{}

// delayedMsg is shell output that was queued with Later. Output queued by a
// shell that has since been replaced by a reload is dropped.
type delayedMsg struct {
	shell *shell.Shell
	lines []string
}

// model is the root bubbletea model of the desktop.
type model struct {
	sess   *desktop.Session
	sched  Scheduler
	logger *zap.Logger
	copyFn func(string) error

	width  int
	height int

	input    textinput.Model
	fileSel  int
	menu     startMenu
	settings *settingsForm
	shutdown bool
	arranged wm.ArrangeMode

	notice      string
	noticeUntil time.Time
}

func newModel(sess *desktop.Session, sched Scheduler) *model {
	if sched == nil {
		sched = NewTickScheduler(sess.Config().Snow.FrameRate)
	}
	m := &model{
		sess:   sess,
		sched:  sched,
		logger: sess.Logger(),
		copyFn: clipboard.WriteAll,
		menu:   newStartMenu(sess.Config()),
	}
	m.resetInput()
	return m
}

func (m *model) resetInput() {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Focus()
	m.input = ti
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sched.Next()}
	if m.sess.Config().Desktop.OpenOnStart != "" {
		delay := time.Duration(m.sess.Config().Desktop.OpenDelayMS) * time.Millisecond
		cmds = append(cmds, tea.Tick(delay, func(time.Time) tea.Msg { return openStartMsg{} }))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.sess.Resize(msg.Width, msg.Height)
		return m, nil

	case FrameMsg:
		m.sess.Frame()
		if m.notice != "" && !m.sess.Now().Before(m.noticeUntil) {
			m.notice = ""
		}
		return m, m.sched.Next()

	case openStartMsg:
		id := m.sess.Config().Desktop.OpenOnStart
		if err := m.sess.WindowAction(id, desktop.ActionOpen); err != nil {
			m.logger.Warn("open on start", zap.String("window", id), zap.Error(err))
		}
		return m, nil

	case delayedMsg:
		if msg.shell == m.sess.Shell {
			msg.shell.Println(msg.lines...)
		}
		return m, nil

	case runMsg:
		if !msg.claim() {
			return m, nil
		}
		before := m.sess.Shell
		v, err := msg.fn(m.sess)
		msg.reply <- runResult{value: v, err: err}
		if m.sess.Shell != before {
			m.afterReload()
		}
		return m, m.drainDelayed()

	case ConfigMsg:
		m.applyConfig(msg)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}

	if m.settings != nil {
		return m, m.updateSettings(msg)
	}
	return m, nil
}

func (m *model) applyConfig(msg ConfigMsg) {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		m.notify("Config error: " + msg.Err.Error())
		return
	}
	if msg.Result == nil || msg.Result.Config == nil {
		return
	}
	m.sess.ApplyConfig(msg.Result.Config)
	m.notify("Settings reloaded")
}

func (m *model) notify(text string) {
	m.notice = text
	m.noticeUntil = m.sess.Now().Add(noticeDuration)
}

// afterReload drops UI state that belonged to the old session contents.
func (m *model) afterReload() {
	m.resetInput()
	m.fileSel = 0
	m.menu.Close()
	m.settings = nil
	m.shutdown = false
	m.arranged = ""
}

func (m *model) reload() {
	m.sess.Reload()
	m.afterReload()
}

// drainDelayed turns queued shell output into timers.
func (m *model) drainDelayed() tea.Cmd {
	sh := m.sess.Shell
	var cmds []tea.Cmd
	for _, d := range sh.TakeDelayed() {
		lines := d.Lines
		cmds = append(cmds, tea.Tick(d.After, func(time.Time) tea.Msg {
			return delayedMsg{shell: sh, lines: lines}
		}))
	}
	return tea.Batch(cmds...)
}

func (m *model) focusedKind() (string, config.WindowKind, bool) {
	id, ok := m.sess.Windows.Focused()
	if !ok {
		return "", "", false
	}
	return id, m.sess.Kind(id), true
}

// openKind opens the first declared window of a kind.
func (m *model) openKind(kind config.WindowKind) {
	for _, w := range m.sess.Config().Windows {
		if w.Kind == kind {
			m.openWindow(w.ID)
			return
		}
	}
}

func (m *model) openWindow(id string) {
	if err := m.sess.WindowAction(id, desktop.ActionOpen); err != nil {
		m.notify(err.Error())
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.shutdown {
		m.reload()
		return nil
	}
	if m.settings != nil {
		if msg.String() == "esc" {
			m.settings = nil
			return nil
		}
		return m.updateSettings(msg)
	}
	if m.menu.open {
		return m.updateMenu(msg)
	}

	switch msg.String() {
	case "alt+t":
		m.openKind(config.KindTerminal)
		return nil
	case "alt+a":
		m.openKind(config.KindAbout)
		return nil
	case "alt+f":
		m.openKind(config.KindFiles)
		return nil
	case "alt+s":
		m.openKind(config.KindSettings)
		return nil
	case "alt+g":
		m.arrange()
		return nil
	case "alt+up", "alt+down", "alt+left", "alt+right":
		if dir, err := wm.ParseDirection(strings.TrimPrefix(msg.String(), "alt+")); err == nil {
			m.sess.Windows.FocusDirection(dir)
		}
		return nil
	case "f11":
		if id, ok := m.sess.Windows.Focused(); ok {
			_ = m.sess.WindowAction(id, desktop.ActionToggleMaximize)
		}
		return nil
	}

	_, kind, ok := m.focusedKind()
	if !ok {
		return nil
	}
	switch kind {
	case config.KindTerminal:
		return m.updateTerminal(msg)
	case config.KindFiles:
		m.updateFiles(msg)
	case config.KindSettings:
		if msg.String() == "enter" {
			return m.openSettings()
		}
	}
	return nil
}

// arrange tiles the open windows; pressing again right away cascades them.
func (m *model) arrange() {
	mode := wm.ArrangeTile
	if m.arranged == wm.ArrangeTile {
		mode = wm.ArrangeCascade
	}
	if err := m.sess.Arrange(mode); err != nil {
		m.notify(err.Error())
		return
	}
	m.arranged = mode
}

func (m *model) updateTerminal(msg tea.KeyMsg) tea.Cmd {
	sh := m.sess.Shell
	switch msg.String() {
	case "enter":
		line := m.input.Value()
		m.input.Reset()
		m.sess.Exec(line)
		return m.drainDelayed()
	case "up":
		if prev, ok := sh.HistoryPrev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return nil
	case "down":
		m.input.SetValue(sh.HistoryNext())
		m.input.CursorEnd()
		return nil
	case "tab":
		if v, ok := sh.Complete(m.input.Value()); ok {
			m.input.SetValue(v)
			m.input.CursorEnd()
		}
		return nil
	case "ctrl+y":
		m.copyTranscript()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *model) copyTranscript() {
	lines := m.sess.Shell.Transcript()
	if err := m.copyFn(strings.Join(lines, "\n")); err != nil {
		m.logger.Warn("clipboard", zap.Error(err))
		m.notify("Clipboard unavailable")
		return
	}
	m.notify(fmt.Sprintf("Copied %d lines", len(lines)))
}

func (m *model) updateFiles(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if m.fileSel > 0 {
			m.fileSel--
		}
	case "down", "j":
		if m.fileSel < len(shell.DriveListing)-1 {
			m.fileSel++
		}
	case "enter":
		m.openFile(m.fileSel)
	}
}

func (m *model) openFile(i int) {
	if i < 0 || i >= len(shell.DriveListing) {
		return
	}
	m.notify("Opening " + shell.DriveListing[i].Name + "...")
}

func (m *model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.menu.Close()
		return nil
	case "enter":
		if it, ok := m.menu.Selected(); ok {
			return m.activate(it)
		}
		return nil
	}
	return m.menu.Update(msg)
}

func (m *model) activate(it menuItem) tea.Cmd {
	m.menu.Close()
	if it.window == "" {
		m.shutdown = true
		m.logger.Info("shut down requested")
		return nil
	}
	m.openWindow(it.window)
	return nil
}

func (m *model) openSettings() tea.Cmd {
	count, wind := m.sess.Config().Snow.Count, 0.0
	if f := m.sess.Field; f != nil {
		count, wind = f.Count(), f.Wind().Target()
	}
	m.settings = newSettingsForm(count, wind)
	return m.settings.Init()
}

func (m *model) updateSettings(msg tea.Msg) tea.Cmd {
	cmd, done, submitted := m.settings.Update(msg)
	if !done {
		return cmd
	}
	if submitted {
		m.applySettings(m.settings.fSnow, m.settings.fWind)
	}
	m.settings = nil
	return nil
}

// applySettings runs the form values through the shell. The first error line
// either command printed becomes the notice.
func (m *model) applySettings(snowAmount, windSpeed string) {
	var out []string
	out = append(out, m.sess.Exec("snow "+strings.TrimSpace(snowAmount))...)
	out = append(out, m.sess.Exec("wind "+strings.TrimSpace(windSpeed))...)
	for _, line := range out {
		if strings.HasPrefix(line, "Error:") || strings.HasPrefix(line, "Usage:") {
			m.notify(line)
			return
		}
	}
	m.notify("Settings applied")
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	pt := wm.Point{X: msg.X, Y: msg.Y}
	switch msg.Action {
	case tea.MouseActionMotion:
		if _, ok := m.sess.Windows.Dragging(); ok {
			m.sess.Windows.DragTo(pt)
		}
		return nil
	case tea.MouseActionRelease:
		m.sess.Windows.EndDrag()
		return nil
	case tea.MouseActionPress:
	default:
		return nil
	}
	if msg.Button != tea.MouseButtonLeft {
		return nil
	}

	m.sess.Windows.PointerDown(pt)
	if m.shutdown {
		m.reload()
		return nil
	}
	if m.settings != nil {
		return nil
	}

	if m.menu.open {
		rows := len(m.menu.Items())
		r := menuRect(rows, m.height, m.taskbarRows())
		if r.Contains(pt.X, pt.Y) {
			i := pt.Y - r.Y - 1
			if i >= 0 && i < rows {
				m.menu.list.Select(i)
				return m.activate(m.menu.Items()[i])
			}
			return nil
		}
		m.menu.Close()
	}

	if pt.Y >= m.height-m.taskbarRows() {
		m.pressTaskbar(pt.X)
		return nil
	}

	id, ok := m.sess.Windows.TopAt(pt.X, pt.Y)
	if !ok {
		m.sess.Burst(pt.X, pt.Y, 0)
		return nil
	}
	w, err := m.sess.Windows.Window(id)
	if err != nil {
		return nil
	}
	if pt.Y == w.Rect.Y {
		m.pressTitle(w, pt)
		return nil
	}
	_ = m.sess.Windows.Focus(id)
	if m.sess.Kind(id) == config.KindFiles {
		body := inner(w.Rect)
		if i := pt.Y - body.Y - filesTop; i >= 0 && i < len(shell.DriveListing) {
			m.fileSel = i
		}
	}
	return nil
}

func (m *model) pressTitle(w wm.Window, pt wm.Point) {
	if b, ok := titleButton(w.Rect, pt.X); ok {
		action := buttonActions[b]
		if err := m.sess.WindowAction(w.ID, action); err != nil {
			m.logger.Warn("title button", zap.String("window", w.ID), zap.Error(err))
		}
		return
	}
	if w.Maximized {
		_ = m.sess.Windows.Focus(w.ID)
		return
	}
	_ = m.sess.Windows.BeginDrag(w.ID, pt)
}

// pressTaskbar handles the Start button and the window buttons: a minimized
// window is restored, the focused one is minimized, any other is focused.
func (m *model) pressTaskbar(x int) {
	if x < len(startLabel) {
		m.menu.Toggle()
		return
	}
	for _, s := range taskbarSlots(m.sess.Windows.Taskbar(), m.width) {
		if x < s.X0 || x >= s.X1 {
			continue
		}
		var err error
		switch {
		case s.Entry.Minimized:
			err = m.sess.Windows.Restore(s.ID)
		case s.Entry.Active:
			err = m.sess.Windows.Minimize(s.ID)
		default:
			err = m.sess.Windows.Focus(s.ID)
		}
		if err != nil {
			m.logger.Warn("taskbar", zap.String("window", s.ID), zap.Error(err))
		}
		return
	}
}

func (m *model) taskbarRows() int {
	return m.sess.Config().Desktop.TaskbarRows
}
