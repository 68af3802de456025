// Package desktop assembles one running desktop: the snow field, the window
// registry and the shell, sized to a terminal and driven from a single loop.
package desktop

import (
	"fmt"
	"math/rand/v2"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/canvas"
	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/shell"
	"github.com/1broseidon/winterdesk/internal/snow"
	"github.com/1broseidon/winterdesk/internal/wm"
)

// Session owns the desktop state for the lifetime of the process. It is not
// safe for concurrent use; see Runner.
type Session struct {
	ID      uuid.UUID
	Started time.Time

	// Field is nil until the first Resize, so snow and wind are no-ops before
	// the desktop knows its size.
	Field   *snow.Field
	Cells   *canvas.Cells
	Windows *wm.Registry
	Shell   *shell.Shell

	cfg     *config.Config
	logger  *zap.Logger
	rng     *rand.Rand
	now     func() time.Time
	cols    int
	rows    int
	reloads int
}

// Option customizes New.
type Option func(*Session)

// WithRand fixes the random source, for reproducible frames.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for the shell, the clock and uptime.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a session from cfg and registers every declared window.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Session{
		ID:     uuid.New(),
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil && cfg.Snow.Seed != 0 {
		s.rng = rand.New(rand.NewPCG(cfg.Snow.Seed, cfg.Snow.Seed))
	}
	s.Started = s.now()

	s.Windows = wm.New(wm.Options{
		TaskbarRows:      cfg.Desktop.TaskbarRows,
		MinVisibleMargin: cfg.Desktop.MinVisibleMargin,
	})
	for _, w := range cfg.Windows {
		rect := wm.Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
		if err := s.Windows.Register(w.ID, w.Title, rect); err != nil {
			return nil, fmt.Errorf("register window %q: %w", w.ID, err)
		}
	}
	s.Shell = shell.New(s.shellOptions(cfg))

	s.logger.Info("session created",
		zap.String("session", s.ID.String()),
		zap.Int("windows", len(cfg.Windows)),
	)
	return s, nil
}

func (s *Session) shellOptions(cfg *config.Config) shell.Options {
	return shell.Options{
		Prompt:       cfg.Shell.Prompt,
		Cwd:          cfg.Shell.Cwd,
		SnowMin:      cfg.Shell.SnowMin,
		SnowMax:      cfg.Shell.SnowMax,
		WindMin:      cfg.Shell.WindMin,
		WindMax:      cfg.Shell.WindMax,
		HistoryLimit: cfg.Shell.HistoryLimit,
		Now:          s.now,
		Info:         s.systemInfo,
	}
}

func (s *Session) systemInfo() shell.SystemInfo {
	return shell.SystemInfo{
		Cores:    runtime.NumCPU(),
		Terminal: os.Getenv("TERM"),
		Cols:     s.cols,
		Rows:     s.rows,
		Language: os.Getenv("LANG"),
		Started:  s.Started,
	}
}

func (s *Session) fieldParams() snow.Params {
	c := s.cfg.Snow
	return snow.Params{
		Width:            float64(s.cols) * c.CellWidth,
		Height:           float64(s.rows) * c.CellHeight,
		Count:            c.Count,
		BurstSurplus:     c.BurstSurplus,
		TrailAlpha:       c.TrailAlpha,
		WindRate:         c.WindRate,
		WindChangeChance: c.WindChangeChance,
	}
}

// Resize adopts a new terminal size. The first call creates the snow field and
// hands it to the shell.
func (s *Session) Resize(cols, rows int) {
	if cols < 1 || rows < 1 {
		return
	}
	s.cols, s.rows = cols, rows
	c := s.cfg.Snow

	if s.Cells == nil {
		s.Cells = canvas.NewCells(cols, rows, c.CellWidth, c.CellHeight)
	} else {
		s.Cells.Resize(cols, rows)
	}

	if s.Field == nil {
		s.Field = snow.NewField(s.fieldParams(), s.rng)
		s.Shell.Attach(s.Field)
		s.logger.Debug("snow field attached", zap.Int("count", s.Field.Count()))
	} else {
		w, h := s.Cells.PixelSize()
		s.Field.Resize(w, h)
	}
	s.Windows.SetViewport(wm.Rect{Width: cols, Height: rows})
}

// Size is the terminal size in cells, zero before the first Resize.
func (s *Session) Size() (cols, rows int) { return s.cols, s.rows }

func (s *Session) Config() *config.Config { return s.cfg }
func (s *Session) Logger() *zap.Logger { return s.logger }
func (s *Session) Now() time.Time { return s.now() }

// Frame advances the animation one step and paints it into Cells.
func (s *Session) Frame() {
	if s.Field == nil {
		return
	}
	s.Field.Frame(s.Cells)
}

// Exec runs one shell line and returns what it printed.
func (s *Session) Exec(line string) []string {
	out := s.Shell.Execute(line)
	s.logger.Debug("shell exec", zap.String("line", line), zap.Int("lines", len(out)))
	return out
}

// CheckBurst reports whether count is an acceptable burst size for callers
// outside the TUI. Zero means the configured burst.
func (s *Session) CheckBurst(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: count must be >= 0", ErrBurstSize)
	}
	if limit := s.cfg.MaxBurst(); count > limit {
		return fmt.Errorf("%w: count %d exceeds %d", ErrBurstSize, count, limit)
	}
	return nil
}

// Burst drops count flakes at the centre of a cell. A count of zero or less
// uses snow.burst_count and larger counts are capped at Config.MaxBurst. It
// returns the body count after trimming.
func (s *Session) Burst(col, row, count int) int {
	if s.Field == nil {
		return 0
	}
	if count <= 0 {
		count = s.cfg.Snow.BurstCount
	}
	count = min(count, s.cfg.MaxBurst())
	cw, ch := s.Cells.CellSize()
	s.Field.Burst((float64(col)+0.5)*cw, (float64(row)+0.5)*ch, count)
	return s.Field.Len()
}

// Reload puts the desktop back to its start-up state: every window closed at
// its declared geometry, a fresh shell and a freshly seeded field.
func (s *Session) Reload() {
	s.Windows.Reset()
	s.Shell = shell.New(s.shellOptions(s.cfg))
	if s.Field != nil {
		s.Field = snow.NewField(s.fieldParams(), s.rng)
		s.Shell.Attach(s.Field)
		s.Cells.Clear()
	}
	s.reloads++
	s.logger.Info("session reloaded", zap.Int("reloads", s.reloads))
}

// ApplyConfig adopts a reloaded configuration. Snow and shell settings take
// effect at once. The window list and taskbar geometry are fixed at start-up,
// so changing them only logs a warning.
func (s *Session) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	old := s.cfg
	s.cfg = cfg
	s.Shell.SetOptions(s.shellOptions(cfg))

	if !reflect.DeepEqual(old.Windows, cfg.Windows) || old.Desktop.TaskbarRows != cfg.Desktop.TaskbarRows ||
		old.Desktop.MinVisibleMargin != cfg.Desktop.MinVisibleMargin {
		s.logger.Warn("window layout changes apply after restart")
	}

	if s.Field == nil {
		return
	}
	oc, nc := old.Snow, cfg.Snow
	if oc.CellWidth != nc.CellWidth || oc.CellHeight != nc.CellHeight {
		s.Cells = canvas.NewCells(s.cols, s.rows, nc.CellWidth, nc.CellHeight)
		w, h := s.Cells.PixelSize()
		s.Field.Resize(w, h)
	}
	if oc.Count != nc.Count {
		s.Field.SetCount(nc.Count)
	}
	s.Field.SetTrailAlpha(nc.TrailAlpha)
	s.Field.Wind().SetTuning(nc.WindRate, nc.WindChangeChance)
	s.logger.Info("config applied", zap.Int("count", nc.Count))
}
