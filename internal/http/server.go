// Package http provides the API server: router setup, health probes and request middleware.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	identityHTTP "github.com/allisson/warden/internal/identity/http"
	"github.com/allisson/warden/internal/metrics"
)

// ReadinessChecker reports whether the storage behind the API can serve requests.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// RouterOptions configures the optional parts of the API router.
type RouterOptions struct {
	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables HTTP request metrics when set.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
}

// Server represents the API HTTP server.
type Server struct {
	endpoint
	router      *gin.Engine
	serviceName string
	readiness   ReadinessChecker
}

// NewServer creates a new API server. Call SetupRouter before Start.
func NewServer(
	readiness ReadinessChecker,
	host string,
	port int,
	serviceName string,
	logger *slog.Logger,
) *Server {
	return &Server{
		endpoint:    newEndpoint("http server", host, port, logger),
		serviceName: serviceName,
		readiness:   readiness,
	}
}

// SetupRouter builds the gin engine with health probes and the authenticated /v1 routes.
// The verifier and the principal handler are resolved per request through the given sources.
// ctx bounds background work started by middlewares.
func (s *Server) SetupRouter(
	ctx context.Context,
	verifiers identityHTTP.VerifierSource,
	handlers identityHTTP.HandlerSource,
	opts RouterOptions,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := newCORSPolicy(opts.CORSEnabled, opts.CORSAllowOrigins).middleware(s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if opts.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(opts.MeterProvider, opts.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(identityHTTP.AuthenticationMiddleware(verifiers, s.logger))
	if opts.RateLimitEnabled {
		v1.Use(identityHTTP.RateLimitMiddleware(
			ctx,
			opts.RateLimitRequestsPerSec,
			opts.RateLimitBurst,
			s.logger,
		))
	}
	identityHTTP.RegisterRoutes(v1, handlers, s.logger)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router is not configured")
	}
	return s.serve(s.router, slog.String("service", s.serviceName))
}

// healthHandler reports liveness. It never touches storage or the identity provider.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.serviceName,
	})
}

// readinessHandler reports whether storage answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.readiness == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.readiness.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
