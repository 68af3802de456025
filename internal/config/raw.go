package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSnowConfig struct {
	Count            *int     `yaml:"count"`
	BurstCount       *int     `yaml:"burst_count"`
	BurstSurplus     *int     `yaml:"burst_surplus"`
	TrailAlpha       *float64 `yaml:"trail_alpha"`
	FrameRate        *int     `yaml:"frame_rate"`
	CellWidth        *float64 `yaml:"cell_width"`
	CellHeight       *float64 `yaml:"cell_height"`
	Background       *string  `yaml:"background"`
	WindRate         *float64 `yaml:"wind_rate"`
	WindChangeChance *float64 `yaml:"wind_change_chance"`
	Seed             *uint64  `yaml:"seed"`
}

type RawShellConfig struct {
	Prompt       *string  `yaml:"prompt"`
	Cwd          *string  `yaml:"cwd"`
	SnowMin      *int     `yaml:"snow_min"`
	SnowMax      *int     `yaml:"snow_max"`
	WindMin      *float64 `yaml:"wind_min"`
	WindMax      *float64 `yaml:"wind_max"`
	HistoryLimit *int     `yaml:"history_limit"`
}

type RawDesktopConfig struct {
	TaskbarRows      *int    `yaml:"taskbar_rows"`
	MinVisibleMargin *int    `yaml:"min_visible_margin"`
	OpenOnStart      *string `yaml:"open_on_start"`
	OpenDelayMS      *int    `yaml:"open_delay_ms"`
}

type RawLoggingConfig struct {
	Enabled   *bool   `yaml:"enabled"`
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors the file format. Nil means "not set in this file".
type RawConfig struct {
	Include IncludeList       `yaml:"include"`
	Snow    *RawSnowConfig    `yaml:"snow"`
	Shell   *RawShellConfig   `yaml:"shell"`
	Desktop *RawDesktopConfig `yaml:"desktop"`
	// Windows replaces the whole list when present.
	Windows []WindowConfig    `yaml:"windows"`
	Logging *RawLoggingConfig `yaml:"logging"`
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Snow != nil {
		if out.Snow == nil {
			out.Snow = &RawSnowConfig{}
		}
		s, o := *out.Snow, overlay.Snow
		s.Count = pick(s.Count, o.Count)
		s.BurstCount = pick(s.BurstCount, o.BurstCount)
		s.BurstSurplus = pick(s.BurstSurplus, o.BurstSurplus)
		s.TrailAlpha = pick(s.TrailAlpha, o.TrailAlpha)
		s.FrameRate = pick(s.FrameRate, o.FrameRate)
		s.CellWidth = pick(s.CellWidth, o.CellWidth)
		s.CellHeight = pick(s.CellHeight, o.CellHeight)
		s.Background = pick(s.Background, o.Background)
		s.WindRate = pick(s.WindRate, o.WindRate)
		s.WindChangeChance = pick(s.WindChangeChance, o.WindChangeChance)
		s.Seed = pick(s.Seed, o.Seed)
		out.Snow = &s
	}

	if overlay.Shell != nil {
		if out.Shell == nil {
			out.Shell = &RawShellConfig{}
		}
		s, o := *out.Shell, overlay.Shell
		s.Prompt = pick(s.Prompt, o.Prompt)
		s.Cwd = pick(s.Cwd, o.Cwd)
		s.SnowMin = pick(s.SnowMin, o.SnowMin)
		s.SnowMax = pick(s.SnowMax, o.SnowMax)
		s.WindMin = pick(s.WindMin, o.WindMin)
		s.WindMax = pick(s.WindMax, o.WindMax)
		s.HistoryLimit = pick(s.HistoryLimit, o.HistoryLimit)
		out.Shell = &s
	}

	if overlay.Desktop != nil {
		if out.Desktop == nil {
			out.Desktop = &RawDesktopConfig{}
		}
		d, o := *out.Desktop, overlay.Desktop
		d.TaskbarRows = pick(d.TaskbarRows, o.TaskbarRows)
		d.MinVisibleMargin = pick(d.MinVisibleMargin, o.MinVisibleMargin)
		d.OpenOnStart = pick(d.OpenOnStart, o.OpenOnStart)
		d.OpenDelayMS = pick(d.OpenDelayMS, o.OpenDelayMS)
		out.Desktop = &d
	}

	if overlay.Windows != nil {
		out.Windows = overlay.Windows
	}

	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		}
		l, o := *out.Logging, overlay.Logging
		l.Enabled = pick(l.Enabled, o.Enabled)
		l.Level = pick(l.Level, o.Level)
		l.File = pick(l.File, o.File)
		l.MaxSizeMB = pick(l.MaxSizeMB, o.MaxSizeMB)
		l.MaxFiles = pick(l.MaxFiles, o.MaxFiles)
		out.Logging = &l
	}

	return out
}
