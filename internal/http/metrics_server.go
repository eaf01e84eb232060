package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/warden/internal/metrics"
)

// MetricsPath is the scrape path served by MetricsServer.
const MetricsPath = "/metrics"

// MetricsServer exposes the Prometheus scrape endpoint on a port separate from the API.
// Scrapes are not logged and carry no authentication.
type MetricsServer struct {
	endpoint
	handler http.Handler
}

// NewMetricsServer builds the scrape server for provider.
func NewMetricsServer(host string, port int, provider *metrics.Provider, logger *slog.Logger) (*MetricsServer, error) {
	if provider == nil {
		return nil, errors.New("metrics server requires a metrics provider")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(MetricsPath, gin.WrapH(provider.Handler()))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "path": MetricsPath})
	})

	return &MetricsServer{
		endpoint: newEndpoint("metrics server", host, port, logger),
		handler:  router,
	}, nil
}

// GetHandler returns the scrape handler without binding a socket.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.handler
}

// Start serves scrapes until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	return s.serve(s.handler, slog.String("path", MetricsPath))
}
