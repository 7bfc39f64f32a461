package main

import (
	"fmt"

	"history-graph/internal/database"
	"history-graph/internal/logger"
	"history-graph/internal/source"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Copy CSV passages into the Postgres passages table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			passages, err := source.CSVSource{Path: args[0], Column: cfg.Source.Column}.Passages(ctx)
			if err != nil {
				return err
			}

			db, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			n, err := database.ImportPassages(ctx, db, args[0], passages)
			if err != nil {
				return err
			}
			logger.Info("Imported passages", "count", n, "file", args[0])
			return nil
		},
	}
}
