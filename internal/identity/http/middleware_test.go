package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
	"github.com/allisson/warden/internal/identity/usecase/mocks"
	"github.com/allisson/warden/internal/registry"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestLogger creates a test logger that discards output.
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticVerifier(verifier identityUseCase.PrincipalVerifier) VerifierSource {
	return func() (identityUseCase.PrincipalVerifier, error) {
		return verifier, nil
	}
}

func newAuthRouter(source VerifierSource) *gin.Engine {
	router := gin.New()
	router.Use(AuthenticationMiddleware(source, createTestLogger()))
	router.GET("/test", func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": principal.Subject})
	})
	return router
}

func serve(router http.Handler, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticationMiddleware_Success(t *testing.T) {
	verifier := mocks.NewMockPrincipalVerifier(t)
	verifier.On("VerifyCredential", mock.Anything, "token-abc").
		Return(&identityDomain.Principal{Subject: "user-1", Provider: "mock"}, nil).
		Once()

	w := serve(newAuthRouter(staticVerifier(verifier)), "Bearer token-abc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"user-1"}`, w.Body.String())
}

func TestAuthenticationMiddleware_CaseInsensitiveBearer(t *testing.T) {
	for _, prefix := range []string{"bearer ", "BEARER ", "BeArEr "} {
		t.Run(prefix, func(t *testing.T) {
			verifier := mocks.NewMockPrincipalVerifier(t)
			verifier.On("VerifyCredential", mock.Anything, "token-abc").
				Return(&identityDomain.Principal{Subject: "user-1"}, nil).
				Once()

			w := serve(newAuthRouter(staticVerifier(verifier)), prefix+"token-abc")

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAuthenticationMiddleware_MissingOrMalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"scheme only", "Bearer"},
		{"empty credential", "Bearer    "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := mocks.NewMockPrincipalVerifier(t)

			w := serve(newAuthRouter(staticVerifier(verifier)), tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthorized", decodeError(t, w)["error"])
			verifier.AssertNotCalled(t, "VerifyCredential", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthenticationMiddleware_VerifierErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"rejected credential", identityDomain.ErrInvalidCredential, http.StatusUnauthorized, "unauthorized"},
		{
			"provider unavailable",
			identityDomain.ErrIdentityProviderUnavailable,
			http.StatusServiceUnavailable,
			"service_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := mocks.NewMockPrincipalVerifier(t)
			verifier.On("VerifyCredential", mock.Anything, "token-abc").Return(nil, tt.err).Once()

			w := serve(newAuthRouter(staticVerifier(verifier)), "Bearer token-abc")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w)["error"])
		})
	}
}

func TestAuthenticationMiddleware_UnboundVerifier(t *testing.T) {
	reg := registry.New()
	token := registry.NewToken("principal_verifier")
	source := func() (identityUseCase.PrincipalVerifier, error) {
		return registry.ResolveAs[identityUseCase.PrincipalVerifier](reg, token)
	}

	w := serve(newAuthRouter(source), "Bearer token-abc")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, body["message"], "principal_verifier")
}
