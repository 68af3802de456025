package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing         CommandType = "PING"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandExec         CommandType = "EXEC"
	CommandListWindows  CommandType = "LIST_WINDOWS"
	CommandWindowAction CommandType = "WINDOW_ACTION"
	CommandBurst        CommandType = "BURST"
	CommandReload       CommandType = "RELOAD"
	CommandArrange      CommandType = "ARRANGE"
	CommandSnapshot     CommandType = "SNAPSHOT"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS and PING.
type StatusData = desktop.Status

type ExecPayload struct {
	Line string `json:"line"`
}

type ExecData struct {
	Lines []string `json:"lines"`
}

type WindowsData struct {
	Windows []wm.Window `json:"windows"`
	Focused string      `json:"focused,omitempty"`
}

type WindowActionPayload struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// BurstPayload addresses a terminal cell. Count 0 means the configured burst.
type BurstPayload struct {
	Col   int `json:"col"`
	Row   int `json:"row"`
	Count int `json:"count,omitempty"`
}

type BurstData struct {
	Particles int `json:"particles"`
}

// ReloadPayload asks for a config re-read; Reset also returns the desktop to
// its start-up state.
type ReloadPayload struct {
	Reset bool `json:"reset,omitempty"`
}

type ArrangePayload struct {
	Mode string `json:"mode"`
}

type SnapshotPayload struct {
	Scale float64 `json:"scale,omitempty"`
}

// SnapshotData carries a PNG, base64 encoded on the wire.
type SnapshotData struct {
	PNG []byte `json:"png"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: command is required")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
