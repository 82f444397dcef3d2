package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/app"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one attrition batch and print the JSON summary",
		Long:  "Score every eligible employee once, print the run summary as JSON and exit.\nThe exit status is non-zero when the batch could not run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := application.Close(); err != nil {
					logger.Error("shutdown error", zap.Error(err))
				}
			}()

			summary, runErr := application.RunOnce(ctx)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			return runErr
		},
	}
}
