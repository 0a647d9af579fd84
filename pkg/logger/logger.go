// Package logger is the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init configures the root logger.
// level is debug|info|warn|error, format is json|console.
func Init(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return fmt.Errorf("invalid log level: %q", level)
	}
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(format) {
	case "", "json":
	case "console", "text":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("invalid log format: %q", format)
	}

	mu.Lock()
	root = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
	return nil
}

// L returns the root logger
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// For returns a sub-logger tagged with a component name
func For(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

// DebugCF logs a debug message with fields
func DebugCF(component, msg string, fields map[string]interface{}) {
	log(zerolog.DebugLevel, component, msg, fields)
}

// InfoCF logs an info message with fields
func InfoCF(component, msg string, fields map[string]interface{}) {
	log(zerolog.InfoLevel, component, msg, fields)
}

// WarnCF logs a warning with fields
func WarnCF(component, msg string, fields map[string]interface{}) {
	log(zerolog.WarnLevel, component, msg, fields)
}

// ErrorCF logs an error with fields
func ErrorCF(component, msg string, fields map[string]interface{}) {
	log(zerolog.ErrorLevel, component, msg, fields)
}

func log(level zerolog.Level, component, msg string, fields map[string]interface{}) {
	l := L()
	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	ev.Str("component", component).Fields(fields).Msg(msg)
}
