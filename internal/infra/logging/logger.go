// Package logging provides file-based logging for trackd.
// It outputs logs to both a global log file (.trackd/logs/trackd.log)
// and ticket-specific log files (.trackd/logs/ticket-<id>.log).
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tracklet/trackd/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger wraps slog with per-ticket file output.
type Logger struct {
	globalFile  *os.File
	ticketFiles map[string]*os.File
	dataDir     string
	mu          sync.Mutex
	level       slog.Level
}

// New creates a new Logger that writes to the trackd log directory.
// If dataDir is empty, logging is disabled.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		dataDir:     dataDir,
		level:       level,
		ticketFiles: make(map[string]*os.File),
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(ticketID, component, msg string) {
	l.log(slog.LevelDebug, ticketID, component, msg)
}

// Info logs an info message.
func (l *Logger) Info(ticketID, component, msg string) {
	l.log(slog.LevelInfo, ticketID, component, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(ticketID, component, msg string) {
	l.log(slog.LevelWarn, ticketID, component, msg)
}

// Error logs an error message.
func (l *Logger) Error(ticketID, component, msg string) {
	l.log(slog.LevelError, ticketID, component, msg)
}

func (l *Logger) log(level slog.Level, ticketID, component, msg string) {
	if l.dataDir == "" || level < l.level {
		return
	}

	attrs := []any{slog.String("component", component)}
	if ticketID != "" {
		attrs = append(attrs, slog.String("ticket", domain.ShortID(ticketID)))
	}

	if f, err := l.ensureGlobalFile(); err == nil {
		slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: l.level})).Log(context.Background(), level, msg, attrs...)
	}
	if ticketID == "" {
		return
	}
	if f, err := l.ensureTicketFile(ticketID); err == nil {
		slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: l.level})).Log(context.Background(), level, msg, attrs...)
	}
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			firstErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.ticketFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.ticketFiles, id)
	}
	return firstErr
}

func (l *Logger) ensureLogsDir() error {
	return os.MkdirAll(filepath.Join(l.dataDir, "logs"), 0o750)
}

func (l *Logger) ensureGlobalFile() (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.globalFile != nil {
		return l.globalFile, nil
	}
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(domain.GlobalLogPath(l.dataDir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open global log file: %w", err)
	}
	l.globalFile = f
	return f, nil
}

func (l *Logger) ensureTicketFile(ticketID string) (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.ticketFiles[ticketID]; ok {
		return f, nil
	}
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(domain.TicketLogPath(l.dataDir, ticketID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open ticket log file: %w", err)
	}
	l.ticketFiles[ticketID] = f
	return f, nil
}
