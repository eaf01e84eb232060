package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// endpoint owns one listening socket. Server and MetricsServer build on it.
type endpoint struct {
	name   string
	server *http.Server
	logger *slog.Logger
}

func newEndpoint(name, host string, port int, logger *slog.Logger) endpoint {
	return endpoint{
		name:   name,
		logger: logger,
		server: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (e *endpoint) Addr() string {
	return e.server.Addr
}

// serve blocks until the endpoint is shut down. A graceful shutdown is not an error.
func (e *endpoint) serve(handler http.Handler, attrs ...any) error {
	e.server.Handler = handler

	e.logger.Info("starting "+e.name, append([]any{slog.String("addr", e.server.Addr)}, attrs...)...)

	if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: listen on %s: %w", e.name, e.server.Addr, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (e *endpoint) Shutdown(ctx context.Context) error {
	e.logger.Info("shutting down " + e.name)
	return e.server.Shutdown(ctx)
}
