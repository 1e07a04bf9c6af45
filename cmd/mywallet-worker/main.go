package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mywallet/internal/amqp"
	"mywallet/internal/cli"
	"mywallet/internal/config"
	applog "mywallet/internal/log"
	"mywallet/internal/sheets"
	gsheet "mywallet/internal/sheets/google"
	memsheet "mywallet/internal/sheets/memory"
	"mywallet/internal/worker"
)

func main() {
	var (
		envFile  string
		cfgFile  string
		resync   time.Duration
		skipSync bool
	)
	cmd := &cobra.Command{
		Use:           "mywallet-worker",
		Short:         "Mirror transaction changes into the spreadsheet journal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig(envFile, cfgFile)
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg)
			return run(cmd.Context(), cfg, logger, resync, !skipSync)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	cmd.Flags().StringVar(&cfgFile, "config", "", "optional config file (yaml, toml or json)")
	cmd.Flags().DurationVar(&resync, "resync-interval", time.Hour, "full journal resync period, 0 disables it")
	cmd.Flags().BoolVar(&skipSync, "skip-startup-sync", false, "do not export every transaction on start")

	ctx, stop := cli.SignalContext(context.Background())
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger, resync time.Duration, startupSync bool) error {
	logger.Info("Starting mywallet-worker", "backend", cfg.DataBackend)

	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Cleanup failed", applog.FieldError, err)
		}
	}()

	journal, err := openJournal(ctx, cfg, logger)
	if err != nil {
		return err
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		logger.WithComponent(applog.ComponentAMQP).Logger)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer consumer.Close()

	w := worker.NewExportWorker(app.Services.Transactions, app.Services.Catalog, journal,
		logger.WithComponent(applog.ComponentWorker).Logger)

	// Catch up on whatever changed while the worker was down.
	if startupSync {
		if err := w.StartupSync(ctx); err != nil {
			logger.Error("Startup sync failed", applog.FieldError, err)
		}
	}

	if resync > 0 {
		go func() {
			ticker := time.NewTicker(resync)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := w.StartupSync(ctx); err != nil {
						logger.Error("Periodic resync failed", applog.FieldError, err)
					}
				}
			}
		}()
	}

	err = consumer.Consume(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		logger.Info("Worker stopped")
		return nil
	}
	return err
}

// openJournal picks the Google Sheets journal when a spreadsheet is
// configured and an in-process one otherwise.
func openJournal(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.Journal, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, journal kept in memory")
		return memsheet.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		Logger:          logger.WithComponent(applog.ComponentSheets).Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
