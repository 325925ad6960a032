package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HerbHall/cinelens/internal/backup"
)

func newRestoreCmd() *cobra.Command {
	var input, dataDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore files from a backup archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := backup.Restore(cmd.Context(), input, dataDir, force)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restore complete: %s restored to %s\n", strings.Join(files, ", "), dataDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "backup archive to restore (required)")
	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "target directory for restored files")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
