package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mywallet/internal/cli"
	apphttp "mywallet/internal/http"
	applog "mywallet/internal/log"
	"mywallet/internal/middleware/ratelimit"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			ctx := cmd.Context()
			app, err := cli.NewApp(ctx, cfg, logger, cli.WithEvents())
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Warn("Cleanup failed", applog.FieldError, err)
				}
			}()

			rl := ratelimit.DefaultConfig()
			rl.RequestsPerSecond = cfg.RateLimitRPS
			rl.Burst = cfg.RateLimitBurst

			srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
				Services:       app.Services,
				Pinger:         app.Backend.Pinger,
				Caches:         app.Caches,
				Logger:         logger,
				AllowedOrigins: cfg.AllowedOrigins,
				RateLimit:      rl,
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting mywallet server",
					"port", cfg.Port, "backend", app.Backend.Type, "events", app.Publisher != nil)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", applog.FieldError, err)
				return err
			}
			logger.Info("Server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
