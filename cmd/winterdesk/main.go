package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/ipc"
	"github.com/1broseidon/winterdesk/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	configPath string
	socketPath string
	verbose    bool

	// logger is the console logger of one-shot commands. The desktop itself
	// logs to a file.
	logger = zap.NewNop()
)

// usageError marks errors caused by bad command lines; they exit with 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usage(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// checkArgs turns cobra's argument validation failures into usage errors.
func checkArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "winterdesk",
		Short: "A retro desktop with falling snow, in your terminal",
		Long: `winterdesk draws a 90s style desktop in the terminal: snow drifting over the
background, draggable windows, a taskbar and a little command shell.

Run without arguments to start the desktop. The other commands talk to a
running desktop over its control socket.`,
		Args:          checkArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.NewConsole(verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(cmd, runOptions{})
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ~/.config/winterdesk/config.yaml)")
	root.PersistentFlags().StringVar(&socketPath, "socket", "", "Control socket path (default: $XDG_RUNTIME_DIR/winterdesk.sock)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newRunCmd(),
		newCtlCmd(),
		newStatusCmd(),
		newWindowsCmd(),
		newWindowCmd(),
		newBurstCmd(),
		newReloadCmd(),
		newArrangeCmd(),
		newSnapshotCmd(),
		newConfigCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  checkArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "winterdesk %s\n", version)
		},
	}
}

// loadConfig loads --config, or the default location.
func loadConfig() (*config.LoadResult, error) {
	if configPath == "" {
		return config.Load()
	}
	return config.LoadFromPath(configPath)
}

func newClient() *ipc.Client {
	if socketPath != "" {
		return ipc.NewClientForSocket(socketPath)
	}
	return ipc.NewClient()
}

// exitCode maps an error from Execute to the process status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, "Run 'winterdesk --help' for usage.")
		}
	}
	_ = logger.Sync()
	os.Exit(exitCode(err))
}
