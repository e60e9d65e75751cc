package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/longpath/internal/config"
	"github.com/harrison/longpath/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent longpath runs",
		Long: `List recent runs from the history database, newest first, with their
matched/moved/skipped/failed counts. Use --moves <run-id> to show the
per-entry outcomes of one run.`,
		Args: cobra.NoArgs,
		RunE: historyCommand,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of runs to show")
	cmd.Flags().String("moves", "", "Show per-entry outcomes for the given run ID")
	cmd.Flags().String("config", "", "Path to config file (default: $LONGPATH_HOME/config.yaml)")

	return cmd
}

func historyCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromHome()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbPath, err := cfg.ResolveHistoryDBPath()
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if runID, _ := cmd.Flags().GetString("moves"); runID != "" {
		moves, err := store.MovesForRun(cmd.Context(), runID)
		if err != nil {
			return fmt.Errorf("failed to load moves: %w", err)
		}
		if len(moves) == 0 {
			fmt.Fprintf(out, "no recorded moves for run %s\n", runID)
			return nil
		}
		for _, m := range moves {
			fmt.Fprintf(out, "%-15s %s -> %s", m.Outcome, m.Source, m.Destination)
			if m.Error != "" {
				fmt.Fprintf(out, " (%s)", m.Error)
			}
			fmt.Fprintln(out)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}

	for _, r := range runs {
		mode := "move"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(out, "%s  %s  %-7s  %s  matched=%d moved=%d skipped=%d failed=%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), mode, r.Target,
			r.Matched, r.Moved, r.Skipped, r.Failed)
	}
	return nil
}
