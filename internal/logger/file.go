package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger writes a durable per-run log file for audit.
// It creates a timestamped log in the given directory and maintains a
// latest.log symlink pointing to the most recent run.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir, creating the
// directory if needed. The run log is named run-YYYYMMDD-HHMMSS.log and a
// header marker line is written immediately so the artifact exists even if
// the run is interrupted.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.write("=== longpath run log ===\n")
	fl.write(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the run log file.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// Tracef logs a trace-level message.
func (fl *FileLogger) Tracef(format string, args ...interface{}) {
	fl.logf("TRACE", format, args...)
}

// Debugf logs a debug-level message.
func (fl *FileLogger) Debugf(format string, args ...interface{}) {
	fl.logf("DEBUG", format, args...)
}

// Infof logs an info-level message.
func (fl *FileLogger) Infof(format string, args ...interface{}) {
	fl.logf("INFO", format, args...)
}

// Warnf logs a warning-level message.
func (fl *FileLogger) Warnf(format string, args ...interface{}) {
	fl.logf("WARN", format, args...)
}

// Errorf logs an error-level message.
func (fl *FileLogger) Errorf(format string, args ...interface{}) {
	fl.logf("ERROR", format, args...)
}

func (fl *FileLogger) logf(level string, format string, args ...interface{}) {
	if logLevelToInt(normalizeLogLevel(level)) < logLevelToInt(fl.logLevel) {
		return
	}
	message := fmt.Sprintf(format, args...)
	fl.write(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

func (fl *FileLogger) write(s string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.runLog == nil {
		return
	}
	fl.runLog.WriteString(s)
}

// Close flushes and closes the run log file. The logger discards further
// messages after Close.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.runLog == nil {
		return nil
	}
	fl.runLog.WriteString(fmt.Sprintf("\nFinished at: %s\n", time.Now().Format(time.RFC3339)))
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}
