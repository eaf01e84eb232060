package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/warden/internal/errors"
	identityDomain "github.com/allisson/warden/internal/identity/domain"
	"github.com/allisson/warden/internal/identity/http/dto"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
	"github.com/allisson/warden/internal/httputil"
	customValidation "github.com/allisson/warden/internal/validation"
)

// PrincipalHandler handles HTTP requests for principal lookups and directory registration.
type PrincipalHandler struct {
	verifier       identityUseCase.PrincipalVerifier
	profileUseCase identityUseCase.ProfileUseCase
	logger         *slog.Logger
}

// NewPrincipalHandler creates a new principal handler with required dependencies.
func NewPrincipalHandler(
	verifier identityUseCase.PrincipalVerifier,
	profileUseCase identityUseCase.ProfileUseCase,
	logger *slog.Logger,
) *PrincipalHandler {
	return &PrincipalHandler{
		verifier:       verifier,
		profileUseCase: profileUseCase,
		logger:         logger,
	}
}

// MeHandler returns the principal of the authenticated caller.
// GET /v1/principals/me - Requires authentication.
func (h *PrincipalHandler) MeHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPrincipalToResponse(principal))
}

// GetHandler fetches the principal of an already verified subject.
// GET /v1/principals/:subject - Requires authentication.
// Returns 404 when the identity provider does not know the subject.
func (h *PrincipalHandler) GetHandler(c *gin.Context) {
	req := dto.GetPrincipalRequest{Subject: c.Param("subject")}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, err := h.verifier.GetPrincipal(c.Request.Context(), req.Subject)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPrincipalToResponse(principal))
}

// CreateHandler registers a profile in the local principal directory.
// POST /v1/principals - Requires authentication.
// Returns 201 Created, or 409 Conflict for a known subject.
func (h *PrincipalHandler) CreateHandler(c *gin.Context) {
	var req dto.CreatePrincipalRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	profile, err := h.profileUseCase.Create(c.Request.Context(), &identityDomain.CreateProfileInput{
		Subject:     req.Subject,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapProfileToResponse(profile))
}

// HandlerSource resolves a principal handler for one request.
type HandlerSource func() (*PrincipalHandler, error)

// RegisterRoutes mounts the principal endpoints on group. The handler is resolved through
// source on every request.
func RegisterRoutes(group *gin.RouterGroup, source HandlerSource, logger *slog.Logger) {
	principals := group.Group("/principals")
	{
		principals.GET("/me", resolveHandler(source, logger, (*PrincipalHandler).MeHandler))
		principals.GET("/:subject", resolveHandler(source, logger, (*PrincipalHandler).GetHandler))
		principals.POST("", resolveHandler(source, logger, (*PrincipalHandler).CreateHandler))
	}
}

func resolveHandler(
	source HandlerSource,
	logger *slog.Logger,
	method func(*PrincipalHandler, *gin.Context),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		handler, err := source()
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}
		method(handler, c)
	}
}
