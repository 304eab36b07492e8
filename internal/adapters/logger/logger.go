// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/optimize/internal/core/ports"
)

// messager is implemented by zerr errors and reports a message without its chain.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer
	level    slog.Level
	jsonMode bool
}

// New creates a Logger writing human-readable records to stderr.
func New() ports.Logger {
	l := &Logger{level: slog.LevelInfo}
	l.rebuild(os.Stderr)
	return l
}

// SetOutput updates the logger's output destination. A nil writer means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rebuild(w)
}

// SetJSON switches between JSON records and text records.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild(l.output)
}

// SetQuiet raises the level to warnings, hiding informational records.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = slog.LevelInfo
	if quiet {
		l.level = slog.LevelWarn
	}
	l.rebuild(l.output)
}

func (l *Logger) rebuild(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	l.output = w
	opts := &slog.HandlerOptions{Level: l.level}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(w, opts))
		return
	}
	l.logger = slog.New(slog.NewTextHandler(w, opts))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err with its causes listed one per line.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	messages := chain(err)
	if len(messages) == 1 {
		l.logger.Error(messages[0])
		return
	}
	l.logger.Error(messages[0], "caused_by", strings.Join(messages[1:], "; "))
}

// chain flattens err into messages: zerr links contribute their own message,
// joined errors contribute each branch, and any other error ends its branch.
func chain(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			if joined, ok := e.(interface{ Unwrap() []error }); ok {
				for _, branch := range joined.Unwrap() {
					walk(branch)
				}
				return
			}
			m, ok := e.(messager)
			if !ok {
				out = append(out, e.Error())
				return
			}
			if msg := m.Message(); msg != "" {
				out = append(out, msg)
			}
			e = errors.Unwrap(e)
		}
	}
	walk(err)
	return out
}
