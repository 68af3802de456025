package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// settingsForm edits snow amount and wind speed. Values are applied through
// the shell so they get the same validation as typed commands.
type settingsForm struct {
	form *huh.Form

	fSnow string
	fWind string
}

func newSettingsForm(count int, wind float64) *settingsForm {
	s := &settingsForm{
		fSnow: strconv.Itoa(count),
		fWind: strconv.FormatFloat(wind, 'f', -1, 64),
	}
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("snow").
				Title("Snow amount").
				Description("Number of flakes").
				Value(&s.fSnow),
			huh.NewInput().
				Key("wind").
				Title("Wind speed").
				Description("Negative blows left").
				Value(&s.fWind),
		),
	).WithWidth(40).WithShowHelp(true)
	return s
}

func (s *settingsForm) Init() tea.Cmd { return s.form.Init() }

// Update feeds msg to the form and reports whether it finished and whether
// it was submitted.
func (s *settingsForm) Update(msg tea.Msg) (cmd tea.Cmd, done, submitted bool) {
	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		return cmd, true, true
	case huh.StateAborted:
		return cmd, true, false
	}
	return cmd, false, false
}

func (s *settingsForm) View(width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(paperColor)).
		Background(lipgloss.Color(activeTitle)).
		Bold(true).
		Padding(0, 1).
		Render("Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(faceColor)).
		Padding(1, 2).
		Render(header + "\n\n" + s.form.View())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(bodyColor)))
}
