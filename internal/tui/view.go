package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/1broseidon/winterdesk/internal/canvas"
	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/shell"
	"github.com/1broseidon/winterdesk/internal/wm"
)

// filesTop is the body row of the first file entry, below the path header.
const filesTop = 2

const shutdownText = "It's now safe to turn off your computer."

// View implements tea.Model.
func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.shutdown {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(lipgloss.Color(shutdownColor)).Bold(true).Render(shutdownText),
			lipgloss.WithWhitespaceBackground(lipgloss.Color(terminalColor)))
	}
	if m.settings != nil {
		return m.settings.View(m.width, m.height)
	}
	return m.render().String()
}

// render composes the desktop back to front: snow, windows by z order, the
// notice, the start menu and the taskbar.
func (m *model) render() *canvas.Grid {
	bg := m.sess.Config().Snow.Background
	g := canvas.NewGrid(m.width, m.height, canvas.Style{BG: bg})
	if m.sess.Cells != nil {
		g.PaintSnow(m.sess.Cells, bg)
	}

	focused, _ := m.sess.Windows.Focused()
	for _, w := range m.sess.Windows.Stack() {
		m.drawWindow(g, w, w.ID == focused)
	}
	if m.notice != "" {
		m.drawNotice(g)
	}
	if m.menu.open {
		m.drawMenu(g)
	}
	m.drawTaskbar(g)
	return g
}

func (m *model) drawWindow(g *canvas.Grid, w wm.Window, active bool) {
	kind := m.sess.Kind(w.ID)
	body := bodyStyle
	if kind == config.KindTerminal {
		body = terminalStyle
	}
	drawFrame(g, w, active, body)

	in := inner(w.Rect)
	if in.Width <= 0 || in.Height <= 0 {
		return
	}
	var lines []string
	switch kind {
	case config.KindTerminal:
		lines = m.terminalLines(in.Width, in.Height, active)
	case config.KindFiles:
		m.drawFiles(g, in)
		return
	case config.KindSettings:
		lines = append(m.sess.Content(w.ID, -1), "", "Press Enter to change")
	default:
		lines = m.sess.Content(w.ID, in.Height)
	}
	for i, line := range lines {
		if i >= in.Height {
			break
		}
		g.Text(in.X+1, in.Y+i, line, body, in.Width-2)
	}
}

// terminalLines wraps the transcript to the body width and keeps the newest
// lines, ending with the input line.
func (m *model) terminalLines(width, height int, active bool) []string {
	w := max(width-2, 1)
	var lines []string
	for _, line := range m.sess.Shell.Transcript() {
		if line == "" {
			lines = append(lines, "")
			continue
		}
		wrapped := wrap.String(wordwrap.String(line, w), w)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	lines = append(lines, m.inputLine(active))
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lines
}

func (m *model) inputLine(active bool) string {
	prompt := m.sess.Shell.Options().Prompt + " "
	value := m.input.Value()
	if !active {
		return prompt + value
	}
	pos := m.input.Position()
	runes := []rune(value)
	if pos >= len(runes) {
		return prompt + value + "_"
	}
	return prompt + string(runes[:pos]) + "_" + string(runes[pos+1:])
}

func (m *model) drawFiles(g *canvas.Grid, in wm.Rect) {
	g.Text(in.X+1, in.Y, `C:\WINTER`, bodyStyle, in.Width-2)
	for i, e := range shell.DriveListing {
		row := in.Y + filesTop + i
		if row >= in.Y+in.Height {
			break
		}
		label := "      " + e.Name
		if e.Dir {
			label = "[DIR] " + e.Name
		}
		st := bodyStyle
		if i == m.fileSel {
			st = selectedStyle
			g.Fill(in.X+1, row, in.Width-2, 1, ' ', st)
		}
		g.Text(in.X+1, row, label, st, in.Width-2)
	}
}

func (m *model) drawNotice(g *canvas.Grid) {
	text := " " + m.notice + " "
	w := runewidth.StringWidth(text)
	x := max(m.width-w-1, 0)
	y := m.height - m.taskbarRows() - 2
	g.Fill(x, y, w, 1, ' ', faceStyle)
	g.Text(x, y, text, faceStyle, w)
}

func (m *model) drawMenu(g *canvas.Grid) {
	items := m.menu.Items()
	r := menuRect(len(items), m.height, m.taskbarRows())
	g.Fill(r.X, r.Y, r.Width, r.Height, ' ', faceStyle)
	for i, it := range items {
		st := faceStyle
		if i == m.menu.Index() {
			st = selectedStyle
			g.Fill(r.X+1, r.Y+1+i, r.Width-2, 1, ' ', st)
		}
		g.Text(r.X+2, r.Y+1+i, it.label, st, r.Width-3)
	}
}

func (m *model) drawTaskbar(g *canvas.Grid) {
	rows := m.taskbarRows()
	if rows <= 0 {
		return
	}
	y := m.height - rows
	g.Fill(0, y, m.width, rows, ' ', faceStyle)

	start := faceStyle
	start.Bold = true
	if m.menu.open {
		start = selectedStyle
	}
	g.Text(0, y, startLabel, start, len(startLabel))

	for _, s := range taskbarSlots(m.sess.Windows.Taskbar(), m.width) {
		st := faceStyle
		switch {
		case s.Entry.Active:
			st = selectedStyle
		case s.Entry.Minimized:
			st.FG = inactiveTitle
		}
		g.Text(s.X0, y, s.Label, st, s.X1-s.X0)
	}

	g.Text(max(m.width-clockWidth+1, 0), y, m.sess.Now().Format("15:04:05"), faceStyle, clockWidth-1)
}
