package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/HerbHall/cinelens/internal/backup"
)

func newBackupCmd(root *rootOptions) *cobra.Command {
	var output, dbPath string
	var noConfig bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the database and config file into a tar.gz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				settings, err := loadSettings(root)
				if err != nil {
					return err
				}
				dbPath = settings.Database.Path
			}
			if output == "" {
				output = fmt.Sprintf("cinelens-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
			}
			configPath := root.configPath
			if configPath == "" {
				configPath = "cinelens.yaml"
			}
			if noConfig {
				configPath = ""
			}

			if err := backup.Backup(cmd.Context(), dbPath, configPath, output); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: cinelens-backup-{timestamp}.tar.gz)")
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default: database.path from config)")
	cmd.Flags().BoolVar(&noConfig, "no-config", false, "do not include the config file")
	return cmd
}
