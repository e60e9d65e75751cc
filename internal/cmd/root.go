// Package cmd wires the longpath CLI: scanning a target tree for paths the
// sync client cannot handle and relocating them under the relocation root.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for longpath
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "longpath",
		Short: "Find and relocate paths too long for cloud sync",
		Long: `longpath scans a directory tree for files and directories whose
absolute path length exceeds a threshold (default 376 characters), writes a
report of every match, and can relocate matches into a mirror directory
under your home folder so the sync client stops choking on them.

Relocation is copy-then-delete: a source file is never removed until its
copy has been confirmed, so an interrupted run cannot lose data.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
