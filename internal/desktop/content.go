package desktop

import (
	"fmt"
	"strconv"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/shell"
)

// AboutLines is the body of the about window.
var AboutLines = []string{
	"WINTER RETRO OS",
	"Version " + shell.Version,
	"",
	"A nostalgic journey to the 90s.",
	"",
	"Click the desktop to make it snow.",
	"Type 'help' in the terminal.",
}

// Kind reports what window id shows. Unknown ids are text windows.
func (s *Session) Kind(id string) config.WindowKind {
	if w, ok := s.cfg.Window(id); ok {
		return w.Kind
	}
	return config.KindText
}

// Content is a plain rendition of a window body, at most rows lines. The TUI
// draws the interactive kinds itself; snapshots and text windows use this.
func (s *Session) Content(id string, rows int) []string {
	var lines []string
	switch s.Kind(id) {
	case config.KindTerminal:
		lines = append(s.Shell.Transcript(), s.Shell.Options().Prompt+" _")
	case config.KindAbout:
		lines = AboutLines
	case config.KindFiles:
		for _, e := range shell.DriveListing {
			if e.Dir {
				lines = append(lines, "[DIR] "+e.Name)
			} else {
				lines = append(lines, "      "+e.Name)
			}
		}
	case config.KindSettings:
		count, wind := s.cfg.Snow.Count, 0.0
		if s.Field != nil {
			count, wind = s.Field.Count(), s.Field.Wind().Target()
		}
		lines = []string{
			fmt.Sprintf("Snow amount: %d", count),
			"Wind speed:  " + strconv.FormatFloat(wind, 'f', -1, 64),
		}
	default:
		if w, ok := s.cfg.Window(id); ok {
			lines = w.Lines
		}
	}
	// Terminals show their newest output.
	if rows >= 0 && len(lines) > rows {
		if s.Kind(id) == config.KindTerminal {
			lines = lines[len(lines)-rows:]
		} else {
			lines = lines[:rows]
		}
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
