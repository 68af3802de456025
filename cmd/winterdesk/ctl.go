package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/ipc"
	"github.com/1broseidon/winterdesk/internal/snow"
	"github.com/1broseidon/winterdesk/internal/wm"
)

func newCtlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ctl <line...>",
		Short: "Run a shell command in the running desktop's terminal",
		Example: `  winterdesk ctl snow 300
  winterdesk ctl wind -1.5`,
		Args: checkArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := newClient().Exec(strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running desktop's status",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().GetStatus()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printStatus(w io.Writer, st *ipc.StatusData) {
	fmt.Fprintln(w, "Desktop: running")
	fmt.Fprintf(w, "Session: %s\n", st.SessionID)
	fmt.Fprintf(w, "Started: %s (up %s)\n", st.Started.Format("2006-01-02 15:04:05"), st.Uptime)
	fmt.Fprintf(w, "Size: %dx%d\n", st.Cols, st.Rows)
	fmt.Fprintf(w, "Snow: %s flakes (target %s)\n", humanize.Comma(int64(st.Particles)), humanize.Comma(int64(st.SnowCount)))
	fmt.Fprintf(w, "Wind: %s (heading for %s)\n", formatWind(st.Wind), formatWind(st.WindTarget))
	focused := st.Focused
	if focused == "" {
		focused = "(none)"
	}
	fmt.Fprintf(w, "Focused: %s\n", focused)
	open := "(none)"
	if len(st.OpenWindows) > 0 {
		open = strings.Join(st.OpenWindows, ", ")
	}
	fmt.Fprintf(w, "Windows: %s\n", open)
	if st.Reloads > 0 {
		fmt.Fprintf(w, "Reloads: %d\n", st.Reloads)
	}
}

func formatWind(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func newWindowsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the running desktop's windows",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().ListWindows()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			printWindows(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func windowState(w wm.Window, focused string) string {
	switch {
	case !w.Visible:
		return wm.StateClosed.String()
	case w.Minimized:
		return wm.StateMinimized.String()
	case w.ID == focused:
		return wm.StateOpenFocused.String()
	default:
		return wm.StateOpenUnfocused.String()
	}
}

func printWindows(w io.Writer, data *ipc.WindowsData) {
	fmt.Fprintf(w, "%-12s %-10s %-20s %s\n", "ID", "STATE", "GEOMETRY", "TITLE")
	for _, win := range data.Windows {
		state := windowState(win, data.Focused)
		if win.Maximized && win.Visible {
			state += "*"
		}
		geom := fmt.Sprintf("%dx%d+%d+%d", win.Rect.Width, win.Rect.Height, win.Rect.X, win.Rect.Y)
		fmt.Fprintf(w, "%-12s %-10s %-20s %s\n", win.ID, state, geom, win.Title)
	}
}

func newWindowCmd() *cobra.Command {
	names := make([]string, 0, len(desktop.Actions))
	for _, a := range desktop.Actions {
		names = append(names, string(a))
	}
	return &cobra.Command{
		Use:   "window <action> <id>",
		Short: "Open, focus, minimize, restore, maximize or close a window",
		Long: "Apply a transition to a window of the running desktop.\n\nActions: " +
			strings.Join(names, ", "),
		Example: `  winterdesk window open about
  winterdesk window toggle-maximize terminal`,
		Args:      checkArgs(cobra.ExactArgs(2)),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := desktop.ParseAction(args[0])
			if err != nil {
				return usageError{err}
			}
			return newClient().WindowAction(args[1], string(action))
		},
	}
}

func newBurstCmd() *cobra.Command {
	var col, row, count int
	cmd := &cobra.Command{
		Use:   "burst",
		Short: "Drop a burst of snow at a cell",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if col < 0 || row < 0 || count < 0 {
				return usage("--col, --row and --count must be >= 0")
			}
			if count > snow.MaxCount+snow.MaxBurstSurplus {
				return usage("--count must be at most %d", snow.MaxCount+snow.MaxBurstSurplus)
			}
			n, err := newClient().Burst(col, row, count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d flakes\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&col, "col", 0, "Column")
	cmd.Flags().IntVar(&row, "row", 0, "Row")
	cmd.Flags().IntVar(&count, "count", 0, "Flakes to add (default: snow.burst_count)")
	return cmd
}

func newReloadCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Re-read the config in the running desktop",
		Long: `Re-read the config file and apply it to the running desktop.

With --reset the desktop also starts over: every window closes, the terminal
is cleared and the snow is reseeded.`,
		Args: checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Reload(reset); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reloaded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Also reset windows, shell and snow")
	return cmd
}

func newArrangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "arrange [tile|cascade]",
		Short:     "Tile or cascade the open windows",
		Args:      checkArgs(cobra.MaximumNArgs(1)),
		ValidArgs: []string{string(wm.ArrangeTile), string(wm.ArrangeCascade)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := string(wm.ArrangeTile)
			if len(args) == 1 {
				mode = args[0]
			}
			if _, err := wm.ParseArrangeMode(mode); err != nil {
				return usageError{err}
			}
			return newClient().Arrange(mode)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
