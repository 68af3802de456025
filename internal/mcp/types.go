package mcp

import "github.com/1broseidon/winterdesk/internal/ipc"

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string `json:"command" jsonschema:"Shell line to run in the desktop terminal, e.g. 'snow 300' or 'wind -1.5'"`
}

// RunCommandOutput is the output for the run_command tool.
type RunCommandOutput struct {
	Lines  []string `json:"lines"`
	Output string   `json:"output"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes one declared window.
type WindowInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Maximized bool   `json:"maximized"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Z         int    `json:"z"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
	Focused string       `json:"focused,omitempty"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	ID     string `json:"id" jsonschema:"Window id as reported by list_windows"`
	Action string `json:"action" jsonschema:"One of open, focus, minimize, restore, maximize, unmaximize, toggle-maximize, close"`
}

// WindowActionOutput is the output for the window_action tool.
type WindowActionOutput struct {
	ID     string     `json:"id"`
	Action string     `json:"action"`
	Window WindowInfo `json:"window"`
}

// SnowBurstInput is the input for the snow_burst tool.
type SnowBurstInput struct {
	Col   int `json:"col" jsonschema:"Terminal column to burst at"`
	Row   int `json:"row" jsonschema:"Terminal row to burst at"`
	Count int `json:"count,omitempty" jsonschema:"Number of flakes (default: the configured burst count)"`
}

// SnowBurstOutput is the output for the snow_burst tool.
type SnowBurstOutput struct {
	Particles int `json:"particles"`
}

// DesktopStatusInput is the input for the desktop_status tool.
type DesktopStatusInput struct{}

// DesktopStatusOutput is the output for the desktop_status tool.
type DesktopStatusOutput = ipc.StatusData

// ArrangeWindowsInput is the input for the arrange_windows tool.
type ArrangeWindowsInput struct {
	Mode string `json:"mode,omitempty" jsonschema:"tile (default) or cascade"`
}

// ArrangeWindowsOutput is the output for the arrange_windows tool.
type ArrangeWindowsOutput struct {
	Mode    string       `json:"mode"`
	Windows []WindowInfo `json:"windows"`
}
