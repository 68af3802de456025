// Package shell is the desktop's toy command interpreter: a line-oriented REPL
// with a transcript, command history, prefix completion and a fixed verb set,
// one of which steers the snow field.
package shell

import (
	"os"
	"runtime"
	"strings"
	"time"
)

const (
	DefaultPrompt       = `C:\>`
	DefaultCwd          = `C:\WINTER`
	DefaultSnowMin      = 0
	DefaultSnowMax      = 500
	DefaultWindMin      = -2.0
	DefaultWindMax      = 2.0
	DefaultHistoryLimit = 100

	// maxTranscript bounds the scrollback kept in memory.
	maxTranscript = 1000
)

// SnowControl is the part of the particle field the shell may steer.
type SnowControl interface {
	SetCount(n int)
	SetWindTarget(v float64)
}

// SystemInfo feeds the sysinfo command.
type SystemInfo struct {
	Cores    int
	Terminal string
	Cols     int
	Rows     int
	Language string
	Started  time.Time
}

// Options configures a Shell. Zero fields take the defaults.
type Options struct {
	Prompt       string
	Cwd          string
	SnowMin      int
	SnowMax      int
	WindMin      float64
	WindMax      float64
	HistoryLimit int
	Now          func() time.Time
	Info         func() SystemInfo
}

func (o Options) withDefaults() Options {
	if o.Prompt == "" {
		o.Prompt = DefaultPrompt
	}
	if o.Cwd == "" {
		o.Cwd = DefaultCwd
	}
	if o.SnowMin == 0 && o.SnowMax == 0 {
		o.SnowMin, o.SnowMax = DefaultSnowMin, DefaultSnowMax
	}
	if o.WindMin == 0 && o.WindMax == 0 {
		o.WindMin, o.WindMax = DefaultWindMin, DefaultWindMax
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Info == nil {
		started := o.Now()
		o.Info = func() SystemInfo {
			return SystemInfo{
				Cores:    runtime.NumCPU(),
				Terminal: os.Getenv("TERM"),
				Language: os.Getenv("LANG"),
				Started:  started,
			}
		}
	}
	return o
}

// Handler runs one verb. Output goes through s.Println.
type Handler func(s *Shell, args []string)

// Delayed is output a command asked to show after a pause.
type Delayed struct {
	After time.Duration
	Lines []string
}

// Shell holds the transcript, history and verb table. It is driven from a
// single goroutine.
type Shell struct {
	opts Options

	handlers map[string]Handler
	verbs    []string

	transcript []string
	emitted    []string
	history    []string
	histIdx    int
	delayed    []Delayed

	field SnowControl
}

// New creates a shell with the built-in verbs registered.
func New(opts Options) *Shell {
	s := &Shell{
		opts:     opts.withDefaults(),
		handlers: make(map[string]Handler),
	}
	registerBuiltins(s)
	return s
}

// Register adds or replaces a verb. Verbs are matched case-insensitively and
// completed in registration order.
func (s *Shell) Register(verb string, h Handler) {
	verb = strings.ToLower(verb)
	if _, ok := s.handlers[verb]; !ok {
		s.verbs = append(s.verbs, verb)
	}
	s.handlers[verb] = h
}

// Attach connects the particle field. Until then snow and wind do nothing.
func (s *Shell) Attach(field SnowControl) {
	s.field = field
}

// SetOptions swaps the configuration, keeping transcript and history.
func (s *Shell) SetOptions(opts Options) {
	s.opts = opts.withDefaults()
	s.trimHistory()
}

func (s *Shell) Options() Options { return s.opts }

// Execute runs one input line and returns the lines it appended to the
// transcript. Empty input prints a blank line and is not recorded.
func (s *Shell) Execute(line string) []string {
	s.emitted = nil
	line = strings.TrimSpace(line)
	if line == "" {
		s.Println("")
		return s.takeEmitted()
	}

	s.history = append(s.history, line)
	s.trimHistory()
	s.histIdx = len(s.history)

	s.Println(s.opts.Prompt + " " + line)

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	if h, ok := s.handlers[verb]; ok {
		h(s, fields[1:])
	} else {
		s.Println(
			"'"+verb+"' is not recognized as an internal or external command.",
			"Type 'help' for available commands.",
		)
	}

	s.Println("")
	return s.takeEmitted()
}

func (s *Shell) takeEmitted() []string {
	out := s.emitted
	s.emitted = nil
	return out
}

func (s *Shell) trimHistory() {
	if over := len(s.history) - s.opts.HistoryLimit; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
		if s.histIdx > len(s.history) {
			s.histIdx = len(s.history)
		}
	}
}

// Println appends lines to the transcript.
func (s *Shell) Println(lines ...string) {
	s.transcript = append(s.transcript, lines...)
	s.emitted = append(s.emitted, lines...)
	if over := len(s.transcript) - maxTranscript; over > 0 {
		s.transcript = append(s.transcript[:0], s.transcript[over:]...)
	}
}

// Clear empties the transcript.
func (s *Shell) Clear() {
	s.transcript = s.transcript[:0]
}

// Transcript returns a copy of the scrollback, oldest first.
func (s *Shell) Transcript() []string {
	out := make([]string, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Later queues lines to be printed after d. The frontend collects them with
// TakeDelayed and prints them through Println when the time comes.
func (s *Shell) Later(d time.Duration, lines ...string) {
	s.delayed = append(s.delayed, Delayed{After: d, Lines: lines})
}

// TakeDelayed returns and forgets the queued delayed output.
func (s *Shell) TakeDelayed() []Delayed {
	out := s.delayed
	s.delayed = nil
	return out
}

// HistoryPrev steps back through history. It reports false when there is
// nothing older, in which case the input should be left alone.
func (s *Shell) HistoryPrev() (string, bool) {
	if s.histIdx <= 0 || len(s.history) == 0 {
		return "", false
	}
	s.histIdx--
	return s.history[s.histIdx], true
}

// HistoryNext steps forward. Walking past the newest entry yields empty input.
func (s *Shell) HistoryNext() string {
	if s.histIdx < len(s.history)-1 {
		s.histIdx++
		return s.history[s.histIdx]
	}
	s.histIdx = len(s.history)
	return ""
}

// History returns a copy of the recorded lines, oldest first.
func (s *Shell) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Complete expands a verb prefix. A single match is returned with true. With
// several matches the candidates are printed and the input comes back
// unchanged.
func (s *Shell) Complete(input string) (string, bool) {
	prefix := strings.ToLower(input)
	var matches []string
	for _, v := range s.verbs {
		if strings.HasPrefix(v, prefix) {
			matches = append(matches, v)
		}
	}
	switch len(matches) {
	case 0:
		return input, false
	case 1:
		return matches[0], true
	default:
		s.Println(s.opts.Prompt+" "+prefix, strings.Join(matches, "  "), "")
		return input, false
	}
}

// Verbs lists the registered verbs in registration order.
func (s *Shell) Verbs() []string {
	out := make([]string, len(s.verbs))
	copy(out, s.verbs)
	return out
}
