package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/clinicseo"
	"github.com/eringen/clinicseo/views"
)

func serveCMD() *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromEnv()
			cfg.AdminPassword = clinicseo.MustEnv("ADMIN_PASSWORD")
			cfg.SessionSecret = clinicseo.MustEnv("ADMIN_SESSION_SECRET")
			if addr != "" {
				cfg.Addr = addr
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			app := clinicseo.New(cfg, views.Default(), clinicseo.WithLogger(logger))
			defer app.Close()

			errc := make(chan error, 1)
			go func() { errc <- app.Start() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown", zap.Error(err))
				return err
			}
			return nil
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default $ADDR or :3000)")
	return serve
}
