// Package mcp exposes a running desktop to MCP clients over stdio. Every tool
// forwards to the desktop's IPC socket.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/ipc"
)

const (
	ServerName    = "winterdesk"
	ServerVersion = "0.1.0"
)

// DesktopClient is the part of ipc.Client the tools use.
type DesktopClient interface {
	GetStatus() (*ipc.StatusData, error)
	Exec(line string) ([]string, error)
	ListWindows() (*ipc.WindowsData, error)
	WindowAction(id, action string) error
	Burst(col, row, count int) (int, error)
	Arrange(mode string) error
}

var _ DesktopClient = (*ipc.Client)(nil)

// Server is the MCP server for driving a desktop.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   DesktopClient
	logger    *zap.Logger
}

// NewServer creates an MCP server forwarding to desktop.
func NewServer(desktop DesktopClient, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		desktop: desktop,
		logger:  logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Run one line in the desktop's terminal shell and return what it printed. Try 'help' for the verb list; 'snow <n>' sets the flake count and 'wind <v>' steers the wind.",
	}, s.handleRunCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every declared window in registration order with its state (closed, open, focused, minimized), geometry in cells and stacking order.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Apply a transition to a window: open, focus, minimize, restore, maximize, unmaximize, toggle-maximize or close. Transitions that do not apply to the window's current state are ignored.",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snow_burst",
		Description: "Drop a burst of snowflakes at a terminal cell, as if the desktop background was clicked there. Returns the flake count afterwards.",
	}, s.handleSnowBurst)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "desktop_status",
		Description: "Report session id, uptime, terminal size, flake count, wind and open windows.",
	}, s.handleDesktopStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_windows",
		Description: "Tile the shown windows on a grid or cascade them from the top-left corner. Maximized windows are restored first.",
	}, s.handleArrangeWindows)
}
