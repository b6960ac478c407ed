// Package audit is the pipeline's structured stage logger: one
// newline-delimited JSON line per event, written to a per-run log file,
// with an optional human-readable mirror to stderr when debug output is
// requested. Grounded on the teacher's audit.TraceLogger (timestamped
// per-run file under a configurable directory, append-only writes).
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Level is the event's severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is one structured log line.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Stage     string                 `json:"stage"`
	Level     Level                  `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger appends newline-delimited JSON events to a per-run file under
// dir, and optionally mirrors a human-readable line to stderr.
type Logger struct {
	file       *os.File
	mirrorToStderr bool
}

// New creates (or appends to, if called again within the same second) a
// log file under dir named by the current run's start time.
func New(dir string, mirrorToStderr bool) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: creating log directory: %w", err)
	}

	name := "run-" + time.Now().Format("20060102-150405") + ".jsonl"
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: opening log file: %w", err)
	}

	return &Logger{file: file, mirrorToStderr: mirrorToStderr}, nil
}

// Log appends one structured event.
func (l *Logger) Log(stage string, level Level, message string, fields map[string]interface{}) error {
	event := Event{Timestamp: time.Now(), Stage: stage, Level: level, Message: message, Fields: fields}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: marshaling event: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: writing event: %w", err)
	}

	if l.mirrorToStderr {
		fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", event.Timestamp.Format(time.RFC3339), level, stage, message)
	}
	return nil
}

// Debugf logs a debug-level event with a formatted message.
func (l *Logger) Debugf(stage, format string, args ...interface{}) error {
	return l.Log(stage, LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info-level event with a formatted message.
func (l *Logger) Infof(stage, format string, args ...interface{}) error {
	return l.Log(stage, LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warn-level event with a formatted message.
func (l *Logger) Warnf(stage, format string, args ...interface{}) error {
	return l.Log(stage, LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error-level event with a formatted message.
func (l *Logger) Errorf(stage, format string, args ...interface{}) error {
	return l.Log(stage, LevelError, fmt.Sprintf(format, args...), nil)
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
