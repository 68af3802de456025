// Package logging builds the desktop's zap logger. The terminal belongs to
// the TUI, so everything goes to a rotating file.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/1broseidon/winterdesk/internal/config"
)

// New returns a logger writing JSON lines to the configured file, and a
// closer that flushes and releases it. Disabled logging yields a no-op logger.
func New(cfg *config.Config) (*zap.Logger, func() error, error) {
	if cfg == nil || !cfg.Logging.Enabled {
		return zap.NewNop(), func() error { return nil }, nil
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.level: %w", err)
	}
	path, err := cfg.LogFilePath()
	if err != nil {
		return nil, nil, err
	}
	out, err := OpenRotatingFile(path, cfg.Logging.MaxSizeMB, cfg.Logging.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.New(zapcore.NewCore(encoder(), zapcore.AddSync(out), level))
	closer := func() error {
		_ = logger.Sync()
		return out.Close()
	}
	return logger, closer, nil
}

// NewConsole is used by the one-shot CLI commands, which log to stderr.
func NewConsole(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return config.Build()
}

func encoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(ec)
}
