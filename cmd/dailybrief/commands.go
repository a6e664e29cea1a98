package main

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"DailyBrief/internal/app"
	"DailyBrief/internal/config"
	"DailyBrief/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every pipeline stage once",
	Long: `Run collect-news, collect-social, collect-market, analyze and deliver in
order. Exits 0 when every stage succeeded and 1 otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		result := application.Run(cmd.Context())
		if code := result.ExitCode(); code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}

var stageCmd = &cobra.Command{
	Use:       "stage <name>",
	Short:     "Run a single pipeline stage",
	Long:      "Run one stage against the artifacts left by earlier stages. Exits 0 on success and 1 on failure.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"collect-news", "collect-social", "collect-market", "analyze", "deliver"},
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		res, err := application.RunStage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !res.Success {
			return &exitError{code: 1}
		}
		return nil
	},
}

var runNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline every day at the configured time",
	Long: `Start the daily scheduler (scheduler.time in scheduler.timezone) and block
until interrupted. A run that is still in progress when the next one is due
causes the new one to be skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, logger, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := application.Schedule(cmd.Context(), runNow); err != nil {
			return err
		}
		logger.Info("scheduler stopped")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "run the pipeline once immediately after starting")
}

func setup(ctx context.Context) (*app.Application, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger := logging.New(cfg.Logging.Level)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "initialise")
	}
	return application, logger, nil
}
