package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/warden/internal/errors"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
	"github.com/allisson/warden/internal/httputil"
)

// VerifierSource resolves the principal verifier for one request.
type VerifierSource func() (identityUseCase.PrincipalVerifier, error)

// AuthenticationMiddleware authenticates requests with a bearer credential in the
// Authorization header.
//
// The middleware:
// 1. Extracts the bearer credential from the Authorization header (case-insensitive scheme)
// 2. Resolves the verifier through source
// 3. Verifies the credential and stores the principal in the request context
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Rejected credential → 401 Unauthorized
//   - Identity provider unavailable → 503 Service Unavailable
//   - Verifier cannot be resolved (wiring error) → 500 Internal Server Error
func AuthenticationMiddleware(source VerifierSource, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		credential := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if credential == "" {
			logger.Debug("authentication failed: empty bearer credential")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		verifier, err := source()
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		principal, err := verifier.VerifyCredential(c.Request.Context(), credential)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		ctx := WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject", principal.Subject),
			slog.String("provider", principal.Provider))

		c.Next()
	}
}
