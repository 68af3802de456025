package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winterdesk/internal/config"
)

const shutDownLabel = "Shut Down"

// menuItem is one start menu entry. An empty window id is the shut down entry.
type menuItem struct {
	label  string
	window string
}

func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return "" }
func (i menuItem) FilterValue() string { return i.label }

// startMenu keeps the selection in a bubbles list; the desktop draws it.
type startMenu struct {
	list list.Model
	open bool
}

func menuLabel(w config.WindowConfig) string {
	switch w.Kind {
	case config.KindTerminal:
		return "Terminal"
	case config.KindAbout:
		return "About"
	case config.KindFiles:
		return "Files"
	case config.KindSettings:
		return "Settings"
	default:
		return w.Title
	}
}

func newStartMenu(cfg *config.Config) startMenu {
	var items []list.Item
	for _, w := range cfg.Windows {
		items = append(items, menuItem{label: menuLabel(w), window: w.ID})
	}
	items = append(items, menuItem{label: shutDownLabel})

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, menuWidth, len(items))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return startMenu{list: l}
}

func (s *startMenu) Toggle() {
	s.open = !s.open
	if s.open {
		s.list.Select(0)
	}
}

func (s *startMenu) Close() { s.open = false }

func (s *startMenu) Items() []menuItem {
	out := make([]menuItem, 0, len(s.list.Items()))
	for _, it := range s.list.Items() {
		out = append(out, it.(menuItem))
	}
	return out
}

func (s *startMenu) Index() int { return s.list.Index() }

func (s *startMenu) Selected() (menuItem, bool) {
	it, ok := s.list.SelectedItem().(menuItem)
	return it, ok
}

// Update moves the selection. Enter and esc are handled by the caller.
func (s *startMenu) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return cmd
}
