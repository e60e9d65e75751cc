// Package logger provides logging for longpath runs.
//
// ConsoleLogger writes level-filtered, timestamped messages for the user,
// with color when the destination is a terminal. FileLogger keeps a durable
// per-run log on disk for audit. Both are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with [HH:MM:SS] timestamps.
// Color output is enabled automatically when the writer is a TTY.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	colorOutput bool
	mu          sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided writer.
// If writer is nil, messages are discarded. logLevel determines the minimum
// level for messages to be output; empty or invalid levels default to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether the writer is a TTY that supports color.
// NO_COLOR is honored via the color library's global switch.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases and validates a log level string,
// falling back to "info" for anything unrecognized.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// ColorEnabled reports whether the logger writes colored output.
func (cl *ConsoleLogger) ColorEnabled() bool {
	return cl.colorOutput
}

// Tracef logs a trace-level message (most verbose).
func (cl *ConsoleLogger) Tracef(format string, args ...interface{}) {
	cl.logf("trace", nil, format, args...)
}

// Debugf logs a debug-level message.
func (cl *ConsoleLogger) Debugf(format string, args ...interface{}) {
	cl.logf("debug", nil, format, args...)
}

// Infof logs an info-level message.
func (cl *ConsoleLogger) Infof(format string, args ...interface{}) {
	cl.logf("info", nil, format, args...)
}

// Warnf logs a warning-level message, colored yellow on terminals.
func (cl *ConsoleLogger) Warnf(format string, args ...interface{}) {
	cl.logf("warn", color.New(color.FgYellow), format, args...)
}

// Errorf logs an error-level message, colored red on terminals.
func (cl *ConsoleLogger) Errorf(format string, args ...interface{}) {
	cl.logf("error", color.New(color.FgRed), format, args...)
}

func (cl *ConsoleLogger) logf(level string, c *color.Color, format string, args ...interface{}) {
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	message := fmt.Sprintf(format, args...)
	if cl.colorOutput && c != nil {
		message = c.Sprint(message)
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	fmt.Fprintf(cl.writer, "[%s] %s\n", time.Now().Format("15:04:05"), message)
}
