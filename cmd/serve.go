package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"domaincheck/internal/api"
	"domaincheck/internal/api/handler/v1handler"
	"domaincheck/internal/checker"
	"domaincheck/internal/config"
	"domaincheck/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, chk checker.Checker) func(ctx context.Context) {
	server := api.NewServer(api.Deps{
		Deps: v1handler.Deps{
			Checker:  chk,
			Sessions: v1handler.NewSessions(cfg.HTTP.MaxStoredRuns),
		},
	}, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// serveCommand constructs the 'serve' subcommand that exposes the checker over HTTP.
func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, cleanup := setupPipeline(ctx, cfg)
			defer cleanup()

			stopWebserver := setupServer(ctx, cfg, p.checker)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
