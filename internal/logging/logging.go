// Package logging provides JSON-lines structured logging for datagrid.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a new JSON-lines structured logger. Records look like
//
//	{"ts":"2024-01-15T10:30:00Z","level":"INFO","msg":"fetched page","key":"...","status":200}
//
// Log levels:
//   - debug: request and cache traffic (enabled via DATAGRID_DEBUG=1)
//   - info: startup, shutdown, fetched pages
//   - warn: failed fetches, ignored input
//   - error: failures that end the program
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config level name onto a slog level. Unknown names
// yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenFile opens path for appending, creating its directory as needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// StartupInfo holds information to log when the grid starts.
type StartupInfo struct {
	Version    string
	ConfigPath string
	Endpoint   string
	Collection string
	Location   string
	PageSize   int
	PID        int
}

// LogStartup logs startup information.
func LogStartup(logger *slog.Logger, info StartupInfo) {
	logger.Info("datagrid started",
		"version", info.Version,
		"config_path", info.ConfigPath,
		"endpoint", info.Endpoint,
		"collection", info.Collection,
		"location", info.Location,
		"page_size", info.PageSize,
		"pid", info.PID,
	)
}

// LogShutdown logs shutdown with the final location.
func LogShutdown(logger *slog.Logger, location string, err error) {
	if err != nil {
		logger.Error("datagrid stopped", "location", location, "error", err)
		return
	}
	logger.Info("datagrid stopped", "location", location)
}
