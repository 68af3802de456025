package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/ipc"
	"github.com/1broseidon/winterdesk/internal/snow"
	"github.com/1broseidon/winterdesk/internal/wm"
)

// maxBurstCount is the ceiling no valid config can raise a burst above. The
// desktop applies its own, usually lower, limit.
const maxBurstCount = snow.MaxCount + snow.MaxBurstSurplus

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	if strings.TrimSpace(args.Command) == "" {
		return nil, RunCommandOutput{}, fmt.Errorf("command is required")
	}
	lines, err := s.desktop.Exec(args.Command)
	if err != nil {
		return nil, RunCommandOutput{}, err
	}
	s.logger.Debug("run_command", zap.String("command", args.Command), zap.Int("lines", len(lines)))
	return nil, RunCommandOutput{
		Lines:  lines,
		Output: strings.Join(lines, "\n"),
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	return nil, ListWindowsOutput{
		Windows: windowInfos(data),
		Focused: data.Focused,
	}, nil
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	if args.ID == "" {
		return nil, WindowActionOutput{}, fmt.Errorf("id is required")
	}
	action, err := desktop.ParseAction(args.Action)
	if err != nil {
		return nil, WindowActionOutput{}, err
	}
	if err := s.desktop.WindowAction(args.ID, string(action)); err != nil {
		return nil, WindowActionOutput{}, err
	}

	out := WindowActionOutput{ID: args.ID, Action: string(action)}
	if data, err := s.desktop.ListWindows(); err == nil {
		for _, w := range windowInfos(data) {
			if w.ID == args.ID {
				out.Window = w
			}
		}
	}
	s.logger.Info("window_action", zap.String("window", args.ID), zap.String("action", string(action)))
	return nil, out, nil
}

func (s *Server) handleSnowBurst(_ context.Context, _ *mcpsdk.CallToolRequest, args SnowBurstInput) (*mcpsdk.CallToolResult, SnowBurstOutput, error) {
	if args.Col < 0 || args.Row < 0 {
		return nil, SnowBurstOutput{}, fmt.Errorf("col and row must be >= 0")
	}
	if args.Count < 0 || args.Count > maxBurstCount {
		return nil, SnowBurstOutput{}, fmt.Errorf("count must be between 0 and %d", maxBurstCount)
	}
	n, err := s.desktop.Burst(args.Col, args.Row, args.Count)
	if err != nil {
		return nil, SnowBurstOutput{}, err
	}
	return nil, SnowBurstOutput{Particles: n}, nil
}

func (s *Server) handleDesktopStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DesktopStatusInput) (*mcpsdk.CallToolResult, DesktopStatusOutput, error) {
	st, err := s.desktop.GetStatus()
	if err != nil {
		return nil, DesktopStatusOutput{}, err
	}
	return nil, *st, nil
}

func (s *Server) handleArrangeWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeWindowsInput) (*mcpsdk.CallToolResult, ArrangeWindowsOutput, error) {
	mode := args.Mode
	if mode == "" {
		mode = string(wm.ArrangeTile)
	}
	if _, err := wm.ParseArrangeMode(mode); err != nil {
		return nil, ArrangeWindowsOutput{}, err
	}
	if err := s.desktop.Arrange(mode); err != nil {
		return nil, ArrangeWindowsOutput{}, err
	}
	out := ArrangeWindowsOutput{Mode: mode}
	if data, err := s.desktop.ListWindows(); err == nil {
		out.Windows = windowInfos(data)
	}
	return nil, out, nil
}

func windowInfos(data *ipc.WindowsData) []WindowInfo {
	out := make([]WindowInfo, 0, len(data.Windows))
	for _, w := range data.Windows {
		out = append(out, WindowInfo{
			ID:        w.ID,
			Title:     w.Title,
			State:     windowState(w, data.Focused).String(),
			Maximized: w.Maximized,
			X:         w.Rect.X,
			Y:         w.Rect.Y,
			Width:     w.Rect.Width,
			Height:    w.Rect.Height,
			Z:         w.Z,
		})
	}
	return out
}

func windowState(w wm.Window, focused string) wm.State {
	switch {
	case !w.Visible:
		return wm.StateClosed
	case w.Minimized:
		return wm.StateMinimized
	case w.ID == focused:
		return wm.StateOpenFocused
	default:
		return wm.StateOpenUnfocused
	}
}
