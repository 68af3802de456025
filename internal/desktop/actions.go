package desktop

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/1broseidon/winterdesk/internal/wm"
)

var (
	// ErrUnknownAction is returned for window actions outside the Action set.
	ErrUnknownAction = errors.New("unknown window action")
	// ErrBurstSize is returned by CheckBurst for negative or oversized bursts.
	ErrBurstSize = errors.New("invalid burst size")
)

// Action names a window transition reachable from outside the TUI.
type Action string

const (
	ActionOpen           Action = "open"
	ActionFocus          Action = "focus"
	ActionMinimize       Action = "minimize"
	ActionRestore        Action = "restore"
	ActionMaximize       Action = "maximize"
	ActionUnmaximize     Action = "unmaximize"
	ActionToggleMaximize Action = "toggle-maximize"
	ActionClose          Action = "close"
)

// Actions lists every action in a stable order, for help text and schemas.
var Actions = []Action{
	ActionOpen, ActionFocus, ActionMinimize, ActionRestore,
	ActionMaximize, ActionUnmaximize, ActionToggleMaximize, ActionClose,
}

// ParseAction accepts the action names case-insensitively, with "_" or "-".
func ParseAction(s string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// WindowAction applies a named transition to window id.
func (s *Session) WindowAction(id string, action Action) error {
	r := s.Windows
	var err error
	switch action {
	case ActionOpen:
		err = r.Open(id)
	case ActionFocus:
		err = r.Focus(id)
	case ActionMinimize:
		err = r.Minimize(id)
	case ActionRestore:
		err = r.Restore(id)
	case ActionMaximize:
		err = r.Maximize(id)
	case ActionUnmaximize:
		err = r.Unmaximize(id)
	case ActionToggleMaximize:
		err = r.ToggleMaximize(id)
	case ActionClose:
		err = r.Close(id)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, id, err)
	}
	s.logger.Debug("window action", zap.String("window", id), zap.String("action", string(action)))
	return nil
}

// Arrange tiles or cascades the shown windows.
func (s *Session) Arrange(mode wm.ArrangeMode) error {
	if err := s.Windows.Arrange(mode); err != nil {
		return err
	}
	s.logger.Debug("windows arranged", zap.String("mode", string(mode)))
	return nil
}
