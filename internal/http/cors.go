package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsPolicy describes which browser origins may call the API with a bearer credential.
type corsPolicy struct {
	enabled     bool
	origins     []string
	allowsEvery bool
}

// newCORSPolicy parses a comma separated origin list. A "*" entry allows every origin.
func newCORSPolicy(enabled bool, allowOrigins string) corsPolicy {
	policy := corsPolicy{enabled: enabled}
	for _, part := range strings.Split(allowOrigins, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		switch {
		case origin == "":
		case origin == "*":
			policy.allowsEvery = true
		case !slices.Contains(policy.origins, origin):
			policy.origins = append(policy.origins, origin)
		}
	}
	return policy
}

func (p corsPolicy) config() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if p.allowsEvery {
		// Credentials travel in the Authorization header, so cookies are never needed.
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = p.origins
	cfg.AllowCredentials = true
	return cfg
}

// middleware returns nil when the policy is disabled, empty or rejected by gin-contrib/cors.
func (p corsPolicy) middleware(logger *slog.Logger) gin.HandlerFunc {
	if !p.enabled {
		return nil
	}
	if !p.allowsEvery && len(p.origins) == 0 {
		logger.Warn("cors enabled without allowed origins, skipping")
		return nil
	}

	cfg := p.config()
	if err := cfg.Validate(); err != nil {
		logger.Warn("cors configuration rejected, skipping", slog.Any("error", err))
		return nil
	}

	logger.Info("cors enabled",
		slog.Bool("all_origins", p.allowsEvery),
		slog.Any("origins", p.origins))
	return cors.New(cfg)
}
