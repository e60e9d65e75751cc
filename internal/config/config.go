package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the path length (in characters) above which an entry
// is considered too long for the sync client to handle.
const DefaultThreshold = 376

// Config represents longpath configuration options
type Config struct {
	// Threshold is the path length above which entries are matched.
	// The comparison is strict: a path of exactly Threshold characters
	// is not matched.
	Threshold int `yaml:"threshold"`

	// RelocationRoot is the directory matched entries are mirrored under.
	// Empty means the default of ~/LFP.
	RelocationRoot string `yaml:"relocation_root"`

	// MaxRetries is the number of copy attempts per file before the file
	// is recorded as failed
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the initial backoff delay between copy attempts.
	// The delay doubles after each failed attempt.
	BaseDelay time.Duration `yaml:"base_delay"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory run logs are written to (empty = <home>/logs)
	LogDir string `yaml:"log_dir"`

	// ReportDir is the directory matched-path reports are written to
	// (empty = <home>/reports)
	ReportDir string `yaml:"report_dir"`

	// Excludes is a list of glob patterns (doublestar syntax) matched
	// against paths relative to the scanned target; matching entries and
	// their subtrees are skipped
	Excludes []string `yaml:"excludes"`

	// KeepAwake enables the sleep-prevention helper process during moves
	KeepAwake bool `yaml:"keep_awake"`

	// HistoryDBPath is the path to the run history database
	// (empty = <home>/history/runs.db)
	HistoryDBPath string `yaml:"history_db_path"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Threshold:      DefaultThreshold,
		RelocationRoot: "",
		MaxRetries:     5,
		BaseDelay:      500 * time.Millisecond,
		LogLevel:       "info",
		LogDir:         "",
		ReportDir:      "",
		Excludes:       nil,
		KeepAwake:      false,
		HistoryDBPath:  "",
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		Threshold      int      `yaml:"threshold"`
		RelocationRoot string   `yaml:"relocation_root"`
		MaxRetries     int      `yaml:"max_retries"`
		BaseDelay      string   `yaml:"base_delay"`
		LogLevel       string   `yaml:"log_level"`
		LogDir         string   `yaml:"log_dir"`
		ReportDir      string   `yaml:"report_dir"`
		Excludes       []string `yaml:"excludes"`
		KeepAwake      bool     `yaml:"keep_awake"`
		HistoryDBPath  string   `yaml:"history_db_path"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.Threshold != 0 {
		cfg.Threshold = yamlCfg.Threshold
	}
	if yamlCfg.RelocationRoot != "" {
		cfg.RelocationRoot = yamlCfg.RelocationRoot
	}
	if yamlCfg.MaxRetries != 0 {
		cfg.MaxRetries = yamlCfg.MaxRetries
	}
	if yamlCfg.BaseDelay != "" {
		delay, err := time.ParseDuration(yamlCfg.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid base_delay format %q: %w", yamlCfg.BaseDelay, err)
		}
		cfg.BaseDelay = delay
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.ReportDir != "" {
		cfg.ReportDir = yamlCfg.ReportDir
	}
	if yamlCfg.Excludes != nil {
		cfg.Excludes = yamlCfg.Excludes
	}
	if yamlCfg.KeepAwake {
		cfg.KeepAwake = yamlCfg.KeepAwake
	}
	if yamlCfg.HistoryDBPath != "" {
		cfg.HistoryDBPath = yamlCfg.HistoryDBPath
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from <home>/config.yaml,
// resolving the longpath home directory first.
func LoadConfigFromHome() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfig(path)
}

// MergeWithFlags merges CLI flag values into the configuration.
// Non-nil pointers take precedence over file and default values.
func (c *Config) MergeWithFlags(threshold *int, excludes *[]string, logLevel *string, keepAwake *bool) {
	if threshold != nil {
		c.Threshold = *threshold
	}
	if excludes != nil {
		c.Excludes = *excludes
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if keepAwake != nil {
		c.KeepAwake = *keepAwake
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be positive, got %d", c.Threshold)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("base_delay cannot be negative, got %s", c.BaseDelay)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (valid: trace, debug, info, warn, error)", c.LogLevel)
	}
	return nil
}
