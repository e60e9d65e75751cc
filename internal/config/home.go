package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetLongpathHome returns the longpath home directory.
// Priority order:
//  1. LONGPATH_HOME environment variable (if set)
//  2. ~/.longpath
//
// The directory is created if it doesn't exist.
func GetLongpathHome() (string, error) {
	if home := os.Getenv("LONGPATH_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create longpath home directory: %w", err)
		}
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	longpathHome := filepath.Join(userHome, ".longpath")
	if err := os.MkdirAll(longpathHome, 0755); err != nil {
		return "", fmt.Errorf("create longpath home directory: %w", err)
	}

	return longpathHome, nil
}

// ConfigPath returns the path to the configuration file: <home>/config.yaml
func ConfigPath() (string, error) {
	home, err := GetLongpathHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// ResolveRelocationRoot returns the directory matched entries are mirrored
// under. An explicit configured root wins; otherwise ~/LFP is used.
// The directory itself is not created here so that dry runs stay
// mutation-free.
func (c *Config) ResolveRelocationRoot() (string, error) {
	if c.RelocationRoot != "" {
		return c.RelocationRoot, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}
	return filepath.Join(userHome, "LFP"), nil
}

// ResolveLogDir returns the run log directory, creating it if needed.
// Always returns cfg.LogDir when set, otherwise <home>/logs.
func (c *Config) ResolveLogDir() (string, error) {
	dir := c.LogDir
	if dir == "" {
		home, err := GetLongpathHome()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}
	return dir, nil
}

// ResolveReportDir returns the matched-path report directory, creating it
// if needed. Always returns cfg.ReportDir when set, otherwise <home>/reports.
func (c *Config) ResolveReportDir() (string, error) {
	dir := c.ReportDir
	if dir == "" {
		home, err := GetLongpathHome()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "reports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	return dir, nil
}

// ResolveHistoryDBPath returns the absolute path to the run history database.
// Defaults to <home>/history/runs.db.
func (c *Config) ResolveHistoryDBPath() (string, error) {
	if c.HistoryDBPath != "" {
		return c.HistoryDBPath, nil
	}
	home, err := GetLongpathHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history", "runs.db"), nil
}

// LockPath returns the path of the lock file guarding concurrent
// relocation runs: <home>/longpath.lock
func LockPath() (string, error) {
	home, err := GetLongpathHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "longpath.lock"), nil
}
