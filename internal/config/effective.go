package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// BuildEffectiveConfig lays raw values over DefaultConfig. It does not validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if s := raw.Snow; s != nil {
		set(&cfg.Snow.Count, s.Count)
		set(&cfg.Snow.BurstCount, s.BurstCount)
		set(&cfg.Snow.BurstSurplus, s.BurstSurplus)
		set(&cfg.Snow.TrailAlpha, s.TrailAlpha)
		set(&cfg.Snow.FrameRate, s.FrameRate)
		set(&cfg.Snow.CellWidth, s.CellWidth)
		set(&cfg.Snow.CellHeight, s.CellHeight)
		set(&cfg.Snow.Background, s.Background)
		set(&cfg.Snow.WindRate, s.WindRate)
		set(&cfg.Snow.WindChangeChance, s.WindChangeChance)
		set(&cfg.Snow.Seed, s.Seed)
	}

	if s := raw.Shell; s != nil {
		set(&cfg.Shell.Prompt, s.Prompt)
		set(&cfg.Shell.Cwd, s.Cwd)
		set(&cfg.Shell.SnowMin, s.SnowMin)
		set(&cfg.Shell.SnowMax, s.SnowMax)
		set(&cfg.Shell.WindMin, s.WindMin)
		set(&cfg.Shell.WindMax, s.WindMax)
		set(&cfg.Shell.HistoryLimit, s.HistoryLimit)
	}

	if d := raw.Desktop; d != nil {
		set(&cfg.Desktop.TaskbarRows, d.TaskbarRows)
		set(&cfg.Desktop.MinVisibleMargin, d.MinVisibleMargin)
		set(&cfg.Desktop.OpenOnStart, d.OpenOnStart)
		set(&cfg.Desktop.OpenDelayMS, d.OpenDelayMS)
	}

	if raw.Windows != nil {
		windows := make([]WindowConfig, 0, len(raw.Windows))
		for i, w := range raw.Windows {
			w.ID = strings.TrimSpace(w.ID)
			if w.Kind == "" {
				// A window named after a stock kind gets that kind.
				switch k := WindowKind(w.ID); k {
				case KindTerminal, KindAbout, KindFiles, KindSettings:
					w.Kind = k
				default:
					w.Kind = KindText
				}
			}
			if w.Title == "" {
				w.Title = w.ID
			}
			if w.ID == "" {
				return nil, &ValidationError{Path: fmt.Sprintf("windows[%d].id", i), Err: fmt.Errorf("id is required")}
			}
			windows = append(windows, w)
		}
		cfg.Windows = windows
	}

	if l := raw.Logging; l != nil {
		set(&cfg.Logging.Enabled, l.Enabled)
		set(&cfg.Logging.Level, l.Level)
		set(&cfg.Logging.File, l.File)
		set(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		set(&cfg.Logging.MaxFiles, l.MaxFiles)
	}

	if lvl, err := ParseLogLevel(cfg.Logging.Level); err == nil {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}
