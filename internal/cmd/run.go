package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/longpath/internal/awake"
	"github.com/harrison/longpath/internal/config"
	"github.com/harrison/longpath/internal/filelock"
	"github.com/harrison/longpath/internal/history"
	"github.com/harrison/longpath/internal/logger"
	"github.com/harrison/longpath/internal/relocate"
	"github.com/harrison/longpath/internal/report"
	"github.com/harrison/longpath/internal/scan"
)

// teeLogger fans messages out to the console and the durable run log.
type teeLogger struct {
	console *logger.ConsoleLogger
	file    *logger.FileLogger
}

func (l *teeLogger) Debugf(format string, args ...interface{}) {
	l.console.Debugf(format, args...)
	l.file.Debugf(format, args...)
}

func (l *teeLogger) Infof(format string, args ...interface{}) {
	l.console.Infof(format, args...)
	l.file.Infof(format, args...)
}

func (l *teeLogger) Warnf(format string, args ...interface{}) {
	l.console.Warnf(format, args...)
	l.file.Warnf(format, args...)
}

func (l *teeLogger) Errorf(format string, args ...interface{}) {
	l.console.Errorf(format, args...)
	l.file.Errorf(format, args...)
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <target-directory>",
		Short: "Scan a directory tree for long paths and optionally relocate them",
		Long: `Scan the target directory tree for entries whose absolute path length
exceeds the threshold, write a report of every match, and (with --move)
relocate them under the relocation root, preserving relative structure.

Without --move this is a dry run: the report is written and the matches are
listed, but nothing on disk is touched.

Configuration is loaded from $LONGPATH_HOME/config.yaml if present
(default ~/.longpath/config.yaml). CLI flags override configuration file
settings.

Examples:
  longpath run ~/OneDrive                    # dry run, report only
  longpath run ~/OneDrive --move             # relocate matches to ~/LFP
  longpath run ~/OneDrive --threshold 300    # custom threshold
  longpath run ~/OneDrive --exclude "**/.git/**" --move
  longpath run ~/OneDrive --move --keep-awake`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	cmd.Flags().Bool("move", false, "Relocate matched entries (default is a dry run)")
	cmd.Flags().Int("threshold", 0, "Path length threshold in characters (0 = use config)")
	cmd.Flags().StringSlice("exclude", nil, "Exclude glob patterns relative to the target (multiple allowed)")
	cmd.Flags().String("config", "", "Path to config file (default: $LONGPATH_HOME/config.yaml)")
	cmd.Flags().String("log-level", "", "Logging verbosity (trace, debug, info, warn, error)")
	cmd.Flags().Bool("keep-awake", false, "Prevent the host from sleeping during the run")
	cmd.Flags().Bool("quiet", false, "Suppress non-error console output")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	target := args[0]

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromHome()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	moveFlag, _ := cmd.Flags().GetBool("move")
	thresholdFlag, _ := cmd.Flags().GetInt("threshold")
	excludesFlag, _ := cmd.Flags().GetStringSlice("exclude")
	logLevelFlag, _ := cmd.Flags().GetString("log-level")
	keepAwakeFlag, _ := cmd.Flags().GetBool("keep-awake")
	quiet, _ := cmd.Flags().GetBool("quiet")

	// Merge only flags the user actually set
	var thresholdPtr *int
	if cmd.Flags().Changed("threshold") {
		thresholdPtr = &thresholdFlag
	}
	var excludesPtr *[]string
	if cmd.Flags().Changed("exclude") {
		excludesPtr = &excludesFlag
	}
	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		logLevelPtr = &logLevelFlag
	}
	var keepAwakePtr *bool
	if cmd.Flags().Changed("keep-awake") {
		keepAwakePtr = &keepAwakeFlag
	}
	cfg.MergeWithFlags(thresholdPtr, excludesPtr, logLevelPtr, keepAwakePtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	consoleLevel := cfg.LogLevel
	if quiet {
		consoleLevel = "error"
	}
	console := logger.NewConsoleLogger(cmd.OutOrStdout(), consoleLevel)

	logDir, err := cfg.ResolveLogDir()
	if err != nil {
		return fmt.Errorf("failed to resolve log directory: %w", err)
	}
	fileLog, err := logger.NewFileLogger(logDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer fileLog.Close()

	log := &teeLogger{console: console, file: fileLog}

	// Interrupts trigger the clean-stop path rather than an abrupt kill:
	// the in-flight entry finishes its copy-then-delete unit and the
	// partial report and summary are still written.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fatal precondition: the target must exist and be a directory.
	scanner, err := scan.NewScanner(target, cfg.Excludes)
	if err != nil {
		return err
	}

	log.Infof("scanning %s (threshold %d)", scanner.Root(), cfg.Threshold)
	scanRes, err := scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	for _, scanErr := range scanRes.Errors {
		log.Warnf("scan: %v", scanErr)
	}

	matched := scan.Filter(scanRes.Entries, cfg.Threshold)
	log.Infof("matched %d of %d entries", len(matched), len(scanRes.Entries))

	// The report is written before any mutation so it can always be
	// inspected, even after an interrupted move run.
	reportDir, err := cfg.ResolveReportDir()
	if err != nil {
		return fmt.Errorf("failed to resolve report directory: %w", err)
	}
	reportPath, err := report.NewWriter(reportDir).Write(matched)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Infof("report written to %s", reportPath)

	run := history.Run{
		ID:        history.NewRunID(),
		Target:    scanner.Root(),
		DryRun:    !moveFlag,
		StartedAt: time.Now(),
		Matched:   len(matched),
	}

	if !moveFlag {
		for _, e := range matched {
			log.Infof("would relocate %s (%d chars)", e.Path, e.Length)
		}
		log.Infof("dry run complete: %d long path(s) found; re-run with --move to relocate", len(matched))
		run.FinishedAt = time.Now()
		recordHistory(cfg, log, run, nil)
		return nil
	}

	destRoot, err := cfg.ResolveRelocationRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve relocation root: %w", err)
	}

	lockPath, err := config.LockPath()
	if err != nil {
		return fmt.Errorf("failed to resolve lock path: %w", err)
	}
	lock := filelock.NewRunLock(lockPath)
	acquired, err := lock.TryAcquire()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("another longpath run is already in progress (lock: %s)", lockPath)
	}
	defer lock.Release()

	if cfg.KeepAwake {
		keeper := awake.Start(log)
		defer keeper.Stop()
	}

	ordered := scan.OrderDeepestFirst(matched)
	progress := logger.NewProgress(len(ordered), 20, console.ColorEnabled())

	relocator := relocate.NewRelocator(scanner.Root(), destRoot, relocate.Options{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BaseDelay,
		Logger:     log,
		Progress: func(current, total int, path string) {
			log.Infof("%s", progress.Line(current, path))
		},
	})

	results, summary := relocator.Relocate(ctx, ordered)

	log.Infof("relocation complete: %d moved, %d skipped, %d failed", summary.Moved, summary.Skipped, summary.Failed)

	run.FinishedAt = time.Now()
	run.Moved = summary.Moved
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed

	moves := make([]history.Move, 0, len(results))
	for _, res := range results {
		m := history.Move{
			RunID:       run.ID,
			Source:      res.Entry.Path,
			Destination: res.Dest,
			Outcome:     res.Outcome.String(),
			Attempts:    res.Attempts,
		}
		if res.Err != nil {
			m.Error = res.Err.Error()
		}
		moves = append(moves, m)
	}
	recordHistory(cfg, log, run, moves)

	return nil
}

// recordHistory persists the run to the history database. Best-effort: a
// history failure is logged and never fails the run. A fresh context is
// used so an interrupted run still gets its partial summary recorded.
func recordHistory(cfg *config.Config, log *teeLogger, run history.Run, moves []history.Move) {
	ctx := context.Background()
	dbPath, err := cfg.ResolveHistoryDBPath()
	if err != nil {
		log.Warnf("history: %v", err)
		return
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		log.Warnf("history: %v", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(ctx, run, moves); err != nil {
		log.Warnf("history: %v", err)
	}
}
