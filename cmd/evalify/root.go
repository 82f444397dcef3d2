package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/config"
)

// newRootCmd creates the root evalify command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "evalify",
		Short:         "Employee attrition-risk scoring",
		Long:          "evalify scores every eligible employee for attrition risk, stores the\nresults and alerts managers and HR about high-risk employees.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newMigrateCmd(),
	)

	return cmd
}

// loadRuntime loads layered configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
