// Package tui runs a desktop session as a full-screen bubbletea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/desktop"
)

// App is one desktop on screen.
type App struct {
	model  *model
	prog   *tea.Program
	bridge *Bridge
}

// Options tunes New. A nil Scheduler means a real timer at snow.frame_rate.
type Options struct {
	Scheduler Scheduler
}

// CheckTerminal fails unless stdin and stdout are both terminals.
func CheckTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("winterdesk requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	return nil
}

// New wraps sess in a program. Nothing is drawn until Run.
func New(ctx context.Context, sess *desktop.Session, opts Options) *App {
	m := newModel(sess, opts.Scheduler)
	popts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}
	prog := tea.NewProgram(m, popts...)
	return &App{
		model:  m,
		prog:   prog,
		bridge: newBridge(prog.Send),
	}
}

// Runner executes work on the program's update loop. Hand it to the IPC
// server.
func (a *App) Runner() desktop.Runner { return a.bridge }

// ConfigChanged forwards a config reload to the program. It matches the
// callback of config.Watch.
func (a *App) ConfigChanged(res *config.LoadResult, err error) {
	go a.prog.Send(ConfigMsg{Result: res, Err: err})
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run() error {
	defer a.bridge.stop()
	_, err := a.prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run desktop: %w", err)
	}
	return nil
}

// Quit asks the program to exit.
func (a *App) Quit() { a.prog.Quit() }
