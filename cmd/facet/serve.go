package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/facet"
	httpAdapter "github.com/aretw0/facet/internal/adapters/http"
	"github.com/aretw0/facet/internal/metrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo session HTTP server",
		Long:  `Starts a JSON API that reads and writes the caller's session, exposing Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}

			f, err := newFacet(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize facet: %w", err)
			}
			defer f.Close()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           newHandler(f, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return run(srv, logger, cfg.Store.Driver)
		},
	}
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	return cmd
}

func newHandler(f *facet.Facet, logger *slog.Logger) http.Handler {
	return httpAdapter.NewHandler(f.Middleware(),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithVersion(facet.Version),
	)
}

// run serves until SIGINT/SIGTERM, then shuts down gracefully.
func run(srv *http.Server, logger *slog.Logger, driver string) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Starting facet server", "addr", srv.Addr, "store", driver)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Start shutdown", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to kill server: %w", err)
			}
		}
		logger.Info("Facet server stopped gracefully")
		return nil
	}
}
