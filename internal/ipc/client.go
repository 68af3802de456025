package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winterdesk/internal/runtimepath"
)

// Client handles IPC communication with a running desktop
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientForSocket(socketPath)
}

func NewClientForSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// WithTimeout returns a copy of c using d for dialing and the round trip.
func (c *Client) WithTimeout(d time.Duration) *Client {
	cp := *c
	if d > 0 {
		cp.timeout = d
	}
	return &cp
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to desktop: %w (is winterdesk running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("desktop error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends command with an optional payload and decodes the data into out.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Ping checks if the desktop is responding
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// GetStatus retrieves the desktop status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Exec runs a shell line in the desktop terminal and returns its output.
func (c *Client) Exec(line string) ([]string, error) {
	var data ExecData
	if err := c.call(CommandExec, ExecPayload{Line: line}, &data); err != nil {
		return nil, err
	}
	return data.Lines, nil
}

func (c *Client) ListWindows() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// WindowAction applies open, focus, minimize, restore, maximize, unmaximize,
// toggle-maximize or close to a window.
func (c *Client) WindowAction(id, action string) error {
	return c.call(CommandWindowAction, WindowActionPayload{ID: id, Action: action}, nil)
}

// Burst drops count flakes at a cell and returns the new body count.
func (c *Client) Burst(col, row, count int) (int, error) {
	var data BurstData
	if err := c.call(CommandBurst, BurstPayload{Col: col, Row: row, Count: count}, &data); err != nil {
		return 0, err
	}
	return data.Particles, nil
}

// Reload makes the desktop re-read its config; reset also restarts the session.
func (c *Client) Reload(reset bool) error {
	return c.call(CommandReload, ReloadPayload{Reset: reset}, nil)
}

func (c *Client) Arrange(mode string) error {
	return c.call(CommandArrange, ArrangePayload{Mode: mode}, nil)
}

// Snapshot returns a PNG of the live desktop.
func (c *Client) Snapshot(scale float64) ([]byte, error) {
	var data SnapshotData
	if err := c.call(CommandSnapshot, SnapshotPayload{Scale: scale}, &data); err != nil {
		return nil, err
	}
	return data.PNG, nil
}
