// Package logging writes the JSON-lines run log: one object per event.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents the log level.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// Fields carries the context of an event. Zero fields are omitted.
type Fields struct {
	Operation string
	Track     string
	TrackID   string
	Stage     string
}

// LogEntry represents a structured log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Service   string    `json:"service"`
	Operation string    `json:"operation,omitempty"`
	Track     string    `json:"track,omitempty"`
	TrackID   string    `json:"track_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger is a structured JSON logger. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	service string
	now     func() time.Time
}

// NewLogger opens logPath for appending, creating its directory.
func NewLogger(logPath, service string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWriterLogger(file, service)
	l.closer = file
	return l, nil
}

// NewWriterLogger logs to w.
func NewWriterLogger(w io.Writer, service string) *Logger {
	return &Logger{w: w, service: service, now: time.Now}
}

// Discard returns a logger that drops every entry.
func Discard() *Logger {
	return NewWriterLogger(io.Discard, "")
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		return err
	}
	return nil
}

func (l *Logger) log(level LogLevel, message string, f Fields, err error) {
	entry := LogEntry{
		Timestamp: l.now(),
		Level:     level,
		Message:   message,
		Service:   l.service,
		Operation: f.Operation,
		Track:     f.Track,
		TrackID:   f.TrackID,
		Stage:     f.Stage,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		data, _ = json.Marshal(LogEntry{Timestamp: entry.Timestamp, Level: level, Message: message, Service: l.service})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(append(data, '\n'))
}

// Info logs an info event.
func (l *Logger) Info(message string, f Fields) {
	l.log(LogLevelInfo, message, f, nil)
}

// Infof logs a formatted info message without context.
func (l *Logger) Infof(format string, args ...any) {
	l.log(LogLevelInfo, fmt.Sprintf(format, args...), Fields{}, nil)
}

// Warn logs a warning event.
func (l *Logger) Warn(message string, f Fields, err error) {
	l.log(LogLevelWarn, message, f, err)
}

// Error logs an error event.
func (l *Logger) Error(message string, f Fields, err error) {
	l.log(LogLevelError, message, f, err)
}
