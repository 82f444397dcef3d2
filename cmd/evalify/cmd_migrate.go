package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the attrition tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := app.OpenDatabase(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			if err := db.Close(); err != nil {
				return fmt.Errorf("close database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
