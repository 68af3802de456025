package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/config"
	"github.com/1broseidon/winterdesk/internal/desktop"
	"github.com/1broseidon/winterdesk/internal/wm"
)

const connTimeout = 10 * time.Second

// ServerOptions configures NewServer.
type ServerOptions struct {
	SocketPath string
	// ConfigPath is re-read on RELOAD. Empty means the default location.
	ConfigPath string
	Logger     *zap.Logger
}

// Server answers IPC requests by running them against the desktop session
// through a desktop.Runner.
type Server struct {
	socketPath string
	configPath string
	runner     desktop.Runner
	logger     *zap.Logger

	listener     net.Listener
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(runner desktop.Runner, opts ServerOptions) (*Server, error) {
	if opts.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		socketPath: opts.SocketPath,
		configPath: opts.ConfigPath,
		runner:     runner,
		logger:     logger,
	}, nil
}

// Start begins listening for IPC connections. A socket left behind by a dead
// desktop is replaced; a live one is an error.
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("another desktop is already listening on %s", s.socketPath)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", zap.String("socket", s.socketPath))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			done := s.shuttingDown
			s.shutdownMu.Unlock()
			if done || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", zap.Error(err))
		return
	}

	req, err := ParseRequest(bytes.TrimSpace(data))
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()
	s.send(conn, s.handleCommand(ctx, req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", zap.Error(err))
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", zap.String("command", string(req.Command)))
	var (
		data any
		err  error
	)
	switch req.Command {
	case CommandPing, CommandGetStatus:
		data, err = s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
			return sess.Status(), nil
		})
	case CommandExec:
		data, err = s.handleExec(ctx, req.Payload)
	case CommandListWindows:
		data, err = s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
			focused, _ := sess.Windows.Focused()
			return WindowsData{Windows: sess.Windows.Windows(), Focused: focused}, nil
		})
	case CommandWindowAction:
		data, err = s.handleWindowAction(ctx, req.Payload)
	case CommandBurst:
		data, err = s.handleBurst(ctx, req.Payload)
	case CommandReload:
		data, err = s.handleReload(ctx, req.Payload)
	case CommandArrange:
		data, err = s.handleArrange(ctx, req.Payload)
	case CommandSnapshot:
		data, err = s.handleSnapshot(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func (s *Server) handleExec(ctx context.Context, raw json.RawMessage) (any, error) {
	var p ExecPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, err
	}
	return s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
		return ExecData{Lines: sess.Exec(p.Line)}, nil
	})
}

func (s *Server) handleWindowAction(ctx context.Context, raw json.RawMessage) (any, error) {
	var p WindowActionPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	action, err := desktop.ParseAction(p.Action)
	if err != nil {
		return nil, err
	}
	return s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
		if err := sess.WindowAction(p.ID, action); err != nil {
			return nil, err
		}
		w, err := sess.Windows.Window(p.ID)
		return w, err
	})
}

func (s *Server) handleBurst(ctx context.Context, raw json.RawMessage) (any, error) {
	var p BurstPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, err
	}
	if p.Col < 0 || p.Row < 0 {
		return nil, fmt.Errorf("col and row must be >= 0")
	}
	return s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
		if err := sess.CheckBurst(p.Count); err != nil {
			return nil, err
		}
		if sess.Field == nil {
			return nil, desktop.ErrNotSized
		}
		return BurstData{Particles: sess.Burst(p.Col, p.Row, p.Count)}, nil
	})
}

func (s *Server) handleReload(ctx context.Context, raw json.RawMessage) (any, error) {
	var p ReloadPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, err
	}

	var res *config.LoadResult
	var err error
	if s.configPath != "" {
		res, err = config.LoadFromPath(s.configPath)
	} else {
		res, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}

	data, err := s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
		sess.ApplyConfig(res.Config)
		if p.Reset {
			sess.Reload()
		}
		return sess.Status(), nil
	})
	if err == nil {
		s.logger.Info("config reloaded over IPC", zap.Strings("files", res.Files), zap.Bool("reset", p.Reset))
	}
	return data, err
}

func (s *Server) handleArrange(ctx context.Context, raw json.RawMessage) (any, error) {
	var p ArrangePayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, err
	}
	if p.Mode == "" {
		p.Mode = string(wm.ArrangeTile)
	}
	mode, err := wm.ParseArrangeMode(p.Mode)
	if err != nil {
		return nil, err
	}
	return s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
		if err := sess.Arrange(mode); err != nil {
			return nil, err
		}
		return WindowsData{Windows: sess.Windows.Windows()}, nil
	})
}

func (s *Server) handleSnapshot(ctx context.Context, raw json.RawMessage) (any, error) {
	var p SnapshotPayload
	if err := decodePayload(raw, &p); err != nil {
		return nil, err
	}
	return s.runner.Do(ctx, func(sess *desktop.Session) (any, error) {
		var buf bytes.Buffer
		if err := sess.WriteSnapshot(&buf, p.Scale); err != nil {
			return nil, err
		}
		return SnapshotData{PNG: buf.Bytes()}, nil
	})
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket file.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

// SocketPath is where the server listens.
func (s *Server) SocketPath() string { return s.socketPath }
