package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winterdesk/internal/snow"
)

// WindowKind selects what a declared window shows.
type WindowKind string

const (
	KindTerminal WindowKind = "terminal"
	KindAbout    WindowKind = "about"
	KindFiles    WindowKind = "files"
	KindSettings WindowKind = "settings"
	KindText     WindowKind = "text" // static lines from the config
)

const (
	minWindowWidth  = 16
	minWindowHeight = 5
)

// SnowConfig tunes the particle field and how it maps onto terminal cells.
type SnowConfig struct {
	Count            int     `yaml:"count"`
	BurstCount       int     `yaml:"burst_count"`
	BurstSurplus     int     `yaml:"burst_surplus"`
	TrailAlpha       float64 `yaml:"trail_alpha"`
	FrameRate        int     `yaml:"frame_rate"`  // frames per second
	CellWidth        float64 `yaml:"cell_width"`  // device pixels per terminal column
	CellHeight       float64 `yaml:"cell_height"` // device pixels per terminal row
	Background       string  `yaml:"background"`
	WindRate         float64 `yaml:"wind_rate"`
	WindChangeChance float64 `yaml:"wind_change_chance"`
	Seed             uint64  `yaml:"seed"` // 0 = seed from the clock
}

// ShellConfig controls the command shell.
type ShellConfig struct {
	Prompt       string  `yaml:"prompt"`
	Cwd          string  `yaml:"cwd"`
	SnowMin      int     `yaml:"snow_min"`
	SnowMax      int     `yaml:"snow_max"`
	WindMin      float64 `yaml:"wind_min"`
	WindMax      float64 `yaml:"wind_max"`
	HistoryLimit int     `yaml:"history_limit"`
}

// DesktopConfig holds window-manager level settings.
type DesktopConfig struct {
	TaskbarRows      int    `yaml:"taskbar_rows"`
	MinVisibleMargin int    `yaml:"min_visible_margin"`
	OpenOnStart      string `yaml:"open_on_start"` // window id, empty for none
	OpenDelayMS      int    `yaml:"open_delay_ms"`
}

// WindowConfig declares one window. Windows are registered once at startup.
type WindowConfig struct {
	ID     string     `yaml:"id"`
	Kind   WindowKind `yaml:"kind"`
	Title  string     `yaml:"title"`
	X      int        `yaml:"x"`
	Y      int        `yaml:"y"`
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Lines  []string   `yaml:"lines,omitempty"`
}

// LoggingConfig configures the rotating log file.
type LoggingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// Config is the effective configuration after defaults and files are merged.
type Config struct {
	Snow    SnowConfig     `yaml:"snow"`
	Shell   ShellConfig    `yaml:"shell"`
	Desktop DesktopConfig  `yaml:"desktop"`
	Windows []WindowConfig `yaml:"windows"`
	Logging LoggingConfig  `yaml:"logging"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Snow: SnowConfig{
			Count:            snow.DefaultCount,
			BurstCount:       30,
			BurstSurplus:     snow.DefaultBurstSurplus,
			TrailAlpha:       snow.DefaultTrailAlpha,
			FrameRate:        30,
			CellWidth:        8,
			CellHeight:       16,
			Background:       "#0a0e27",
			WindRate:         0.01,
			WindChangeChance: 0.01,
		},
		Shell: ShellConfig{
			Prompt:       `C:\>`,
			Cwd:          `C:\WINTER`,
			SnowMin:      0,
			SnowMax:      500,
			WindMin:      -2,
			WindMax:      2,
			HistoryLimit: 100,
		},
		Desktop: DesktopConfig{
			TaskbarRows:      1,
			MinVisibleMargin: 10,
			OpenOnStart:      "terminal",
			OpenDelayMS:      1000,
		},
		Windows: DefaultWindows(),
		Logging: LoggingConfig{
			Enabled:   true,
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// DefaultWindows is the stock window set of the desktop.
func DefaultWindows() []WindowConfig {
	return []WindowConfig{
		{ID: "terminal", Kind: KindTerminal, Title: "Terminal", X: 10, Y: 3, Width: 72, Height: 22},
		{ID: "about", Kind: KindAbout, Title: "About Winter OS", X: 24, Y: 6, Width: 46, Height: 14},
		{ID: "files", Kind: KindFiles, Title: "My Files", X: 34, Y: 8, Width: 40, Height: 14},
		{ID: "settings", Kind: KindSettings, Title: "Settings", X: 18, Y: 5, Width: 44, Height: 16},
	}
}

// Window looks up a declared window by id.
func (c *Config) Window(id string) (WindowConfig, bool) {
	for _, w := range c.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowConfig{}, false
}

// MaxBurst is the largest burst accepted from any caller: the shell's snow
// ceiling plus the surplus the field tolerates before trimming.
func (c *Config) MaxBurst() int {
	return c.Shell.SnowMax + c.Snow.BurstSurplus
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	s := c.Snow
	if s.Count < 0 {
		return &ValidationError{Path: "snow.count", Err: fmt.Errorf("count must be >= 0")}
	}
	if s.BurstCount < 0 {
		return &ValidationError{Path: "snow.burst_count", Err: fmt.Errorf("burst_count must be >= 0")}
	}
	if s.BurstSurplus < 1 {
		return &ValidationError{Path: "snow.burst_surplus", Err: fmt.Errorf("burst_surplus must be >= 1")}
	}
	if s.TrailAlpha <= 0 || s.TrailAlpha > 1 {
		return &ValidationError{Path: "snow.trail_alpha", Err: fmt.Errorf("trail_alpha must be in (0, 1]")}
	}
	if s.FrameRate < 1 || s.FrameRate > 120 {
		return &ValidationError{Path: "snow.frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 120")}
	}
	if s.CellWidth <= 0 || s.CellHeight <= 0 {
		return &ValidationError{Path: "snow.cell_width", Err: fmt.Errorf("cell_width and cell_height must be > 0")}
	}
	if !isHexColor(s.Background) {
		return &ValidationError{Path: "snow.background", Err: fmt.Errorf("background must be a #rrggbb colour")}
	}
	if s.WindRate <= 0 || s.WindRate > 1 {
		return &ValidationError{Path: "snow.wind_rate", Err: fmt.Errorf("wind_rate must be in (0, 1]")}
	}
	if s.WindChangeChance < 0 || s.WindChangeChance > 1 {
		return &ValidationError{Path: "snow.wind_change_chance", Err: fmt.Errorf("wind_change_chance must be in [0, 1]")}
	}
	if s.BurstSurplus > snow.MaxBurstSurplus {
		return &ValidationError{Path: "snow.burst_surplus", Err: fmt.Errorf("burst_surplus must be <= %d", snow.MaxBurstSurplus)}
	}

	sh := c.Shell
	if strings.TrimSpace(sh.Prompt) == "" {
		return &ValidationError{Path: "shell.prompt", Err: fmt.Errorf("prompt must not be empty")}
	}
	if sh.SnowMin < 0 || sh.SnowMax <= sh.SnowMin {
		return &ValidationError{Path: "shell.snow_max", Err: fmt.Errorf("need 0 <= snow_min < snow_max")}
	}
	if sh.SnowMax > snow.MaxCount {
		return &ValidationError{Path: "shell.snow_max", Err: fmt.Errorf("snow_max must be <= %d", snow.MaxCount)}
	}
	if s.Count < sh.SnowMin || s.Count > sh.SnowMax {
		return &ValidationError{Path: "snow.count", Err: fmt.Errorf("count must be between %d and %d", sh.SnowMin, sh.SnowMax)}
	}
	if s.BurstCount > c.MaxBurst() {
		return &ValidationError{Path: "snow.burst_count", Err: fmt.Errorf("burst_count must be <= %d", c.MaxBurst())}
	}
	if sh.WindMax <= sh.WindMin {
		return &ValidationError{Path: "shell.wind_max", Err: fmt.Errorf("wind_max must be greater than wind_min")}
	}
	if sh.HistoryLimit < 1 {
		return &ValidationError{Path: "shell.history_limit", Err: fmt.Errorf("history_limit must be >= 1")}
	}

	d := c.Desktop
	if d.TaskbarRows < 1 {
		return &ValidationError{Path: "desktop.taskbar_rows", Err: fmt.Errorf("taskbar_rows must be >= 1")}
	}
	if d.MinVisibleMargin < 1 {
		return &ValidationError{Path: "desktop.min_visible_margin", Err: fmt.Errorf("min_visible_margin must be >= 1")}
	}
	if d.OpenDelayMS < 0 {
		return &ValidationError{Path: "desktop.open_delay_ms", Err: fmt.Errorf("open_delay_ms must be >= 0")}
	}

	if len(c.Windows) == 0 {
		return &ValidationError{Path: "windows", Err: fmt.Errorf("windows must not be empty")}
	}
	seen := make(map[string]struct{}, len(c.Windows))
	for i, w := range c.Windows {
		path := fmt.Sprintf("windows[%d]", i)
		if strings.TrimSpace(w.ID) == "" {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("id is required")}
		}
		if _, dup := seen[w.ID]; dup {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("duplicate window id %q", w.ID)}
		}
		seen[w.ID] = struct{}{}
		switch w.Kind {
		case KindTerminal, KindAbout, KindFiles, KindSettings, KindText:
		default:
			return &ValidationError{Path: path + ".kind", Err: fmt.Errorf("kind must be one of: terminal, about, files, settings, text")}
		}
		if w.Width < minWindowWidth || w.Height < minWindowHeight {
			return &ValidationError{Path: path + ".width", Err: fmt.Errorf("window must be at least %dx%d", minWindowWidth, minWindowHeight)}
		}
		if w.X < 0 || w.Y < 0 {
			return &ValidationError{Path: path + ".x", Err: fmt.Errorf("x and y must be >= 0")}
		}
	}
	if d.OpenOnStart != "" {
		if _, ok := seen[d.OpenOnStart]; !ok {
			return &ValidationError{Path: "desktop.open_on_start", Err: fmt.Errorf("unknown window %q", d.OpenOnStart)}
		}
	}

	l := c.Logging
	if _, err := ParseLogLevel(l.Level); err != nil {
		return &ValidationError{Path: "logging.level", Err: err}
	}
	if l.MaxSizeMB < 1 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 1")}
	}
	if l.MaxFiles < 1 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 1")}
	}
	return nil
}

// ParseLogLevel normalizes a level name. "warning" is accepted as "warn".
func ParseLogLevel(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return "debug", nil
	case "", "info":
		return "info", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("level must be one of: debug, info, warn, error")
	}
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// LogFilePath resolves the log file, falling back to the XDG data directory.
func (c *Config) LogFilePath() (string, error) {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "winterdesk.log"), nil
}

// DataDir is $XDG_DATA_HOME/winterdesk or ~/.local/share/winterdesk.
func DataDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, "winterdesk"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "winterdesk"), nil
}

// Marshal renders the effective config as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
