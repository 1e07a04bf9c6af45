package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mywallet/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the local sqlite gateway schema",
	}
	for _, dir := range []storage.Direction{storage.Up, storage.Down} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: fmt.Sprintf("Apply every migration %s", dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, logger, err := bootstrap()
				if err != nil {
					return err
				}
				v, err := storage.Migrate(cfg.SQLiteDBPath, dir)
				if err != nil {
					return err
				}
				logger.Info("Migrations applied", "direction", dir, "version", v, "db_path", cfg.SQLiteDBPath)
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
				return nil
			},
		})
	}
	return cmd
}
