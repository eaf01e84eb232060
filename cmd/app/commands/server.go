package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/warden/internal/app"
)

// RunServer connects the storage and serves the API, plus the metrics endpoint when enabled,
// until ctx is cancelled or SIGINT/SIGTERM is received. A storage connect failure is fatal
// and nothing is served. On shutdown the container stops the servers and disconnects the
// storage within ServerShutdownTimeout.
func RunServer(ctx context.Context, container *app.Container, version string) error {
	cfg := container.Config()
	gin.SetMode(cfg.GetGinMode())

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("identity_provider", cfg.IdentityProvider),
		slog.String("db_driver", cfg.DBDriver),
	)

	defer closeContainer(container, logger)

	if err := container.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect storage: %w", err)
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Runs on a signal or when a server fails, and makes the other servers return.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		return container.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
