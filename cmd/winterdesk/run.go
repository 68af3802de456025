package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/ipc"
	"github.com/1broseidon/winterdesk/internal/logging"
	"github.com/1broseidon/winterdesk/internal/tui"
)

type runOptions struct {
	headless bool
	size     string
	noIPC    bool
	noWatch  bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the desktop (the default command)",
		Long: `Start the desktop in this terminal.

Keys:
  alt+t, alt+a, alt+f, alt+s  Open Terminal, About, Files, Settings
  alt+g                       Tile open windows (again: cascade)
  f11                         Maximize or restore the focused window
  ctrl+c                      Quit

With --headless nothing is drawn: the snow keeps falling in memory and the
desktop is driven entirely over the control socket.`,
		Args: checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Run without a terminal UI")
	cmd.Flags().StringVar(&opts.size, "size", "100x30", "Desktop size in cells for --headless (COLSxROWS)")
	cmd.Flags().BoolVar(&opts.noIPC, "no-ipc", false, "Do not open the control socket")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not reload the config file when it changes")
	return cmd
}

// parseSize reads "COLSxROWS".
func parseSize(s string) (int, int, error) {
	c, r, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want COLSxROWS)", s)
	}
	cols, err1 := strconv.Atoi(c)
	rows, err2 := strconv.Atoi(r)
	if err1 != nil || err2 != nil || cols < 1 || rows < 1 {
		return 0, 0, fmt.Errorf("invalid size %q (want COLSxROWS)", s)
	}
	return cols, rows, nil
}

func runDesktop(cmd *cobra.Command, opts runOptions) error {
	var cols, rows int
	if opts.headless {
		var err error
		if cols, rows, err = parseSize(opts.size); err != nil {
			return usageError{err}
		}
	} else if err := tui.CheckTerminal(); err != nil {
		return err
	}

	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileLog, closeLog, err := logging.New(res.Config)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = closeLog() }()

	sess, err := desktop.New(res.Config, desktop.WithLogger(fileLog))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	var (
		runner   desktop.Runner
		onReload func(*config.LoadResult, error)
	)
	if opts.headless {
		sess.Resize(cols, rows)
		locked := desktop.NewLocked(sess)
		defer locked.Close()
		runner = locked
		onReload = func(res *config.LoadResult, err error) {
			applyReload(gctx, locked, fileLog, res, err)
		}
		g.Go(func() error {
			return runFrames(gctx, locked, res.Config.Snow.FrameRate)
		})
	} else {
		app := tui.New(gctx, sess, tui.Options{})
		runner = app.Runner()
		onReload = app.ConfigChanged
		g.Go(func() error {
			defer cancel()
			return app.Run()
		})
	}

	if !opts.noIPC {
		srv, err := ipc.NewServer(runner, ipc.ServerOptions{
			SocketPath: socketPath,
			ConfigPath: configPath,
			Logger:     fileLog,
		})
		if err != nil {
			return err
		}
		g.Go(func() error { return srv.Serve(gctx) })
	}

	if !opts.noWatch {
		path := configPath
		if path == "" {
			if path, err = config.DefaultConfigPath(); err != nil {
				return err
			}
		}
		g.Go(func() error {
			return config.Watch(gctx, path, config.DefaultWatchDebounce, onReload)
		})
	}

	fileLog.Info("desktop started",
		zap.String("session", sess.ID.String()),
		zap.Bool("headless", opts.headless),
		zap.Strings("config_files", res.Files),
	)
	err = g.Wait()
	fileLog.Info("desktop stopped", zap.Error(err))
	return err
}

// runFrames animates a headless desktop at fps until ctx ends.
func runFrames(ctx context.Context, runner desktop.Runner, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, err := runner.Do(ctx, func(s *desktop.Session) (any, error) {
				s.Frame()
				return nil, nil
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}

func applyReload(ctx context.Context, runner desktop.Runner, log *zap.Logger, res *config.LoadResult, err error) {
	if err != nil {
		log.Warn("config reload failed", zap.Error(err))
		return
	}
	_, _ = runner.Do(ctx, func(s *desktop.Session) (any, error) {
		s.ApplyConfig(res.Config)
		return nil, nil
	})
}
