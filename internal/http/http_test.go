package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
	identityHTTP "github.com/allisson/warden/internal/identity/http"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
	"github.com/allisson/warden/internal/identity/usecase/mocks"
	"github.com/allisson/warden/internal/metrics"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// setupTestServer wires a server whose /v1 routes use a mocked verifier.
func setupTestServer(t *testing.T, readiness ReadinessChecker) (*Server, *mocks.MockPrincipalVerifier) {
	t.Helper()

	logger := createTestLogger()
	verifier := mocks.NewMockPrincipalVerifier(t)
	handler := identityHTTP.NewPrincipalHandler(verifier, nil, logger)

	server := NewServer(readiness, "localhost", 0, "warden-test", logger)
	server.SetupRouter(
		t.Context(),
		func() (identityUseCase.PrincipalVerifier, error) { return verifier, nil },
		func() (*identityHTTP.PrincipalHandler, error) { return handler, nil },
		RouterOptions{},
	)
	return server, verifier
}

func get(handler http.Handler, path, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	w := get(server.GetHandler(), "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"warden-test"}`, w.Body.String())
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		readiness  ReadinessChecker
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no checker",
			readiness:  nil,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"not_ready","components":{"database":"error"}}`,
		},
		{
			name:       "ping fails",
			readiness:  pingFunc(func(context.Context) error { return errors.New("not initialized") }),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"not_ready","components":{"database":"error"}}`,
		},
		{
			name:       "ping succeeds",
			readiness:  pingFunc(func(context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready","components":{"database":"ok"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := setupTestServer(t, tt.readiness)

			w := get(server.GetHandler(), "/ready", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRouter_PrincipalsRequireAuthentication(t *testing.T) {
	server, verifier := setupTestServer(t, nil)

	w := get(server.GetHandler(), "/v1/principals/me", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	verifier.AssertNotCalled(t, "VerifyCredential", mock.Anything, mock.Anything)
}

func TestRouter_PrincipalsMe(t *testing.T) {
	server, verifier := setupTestServer(t, nil)
	verifier.On("VerifyCredential", mock.Anything, "token-abc").
		Return(&identityDomain.Principal{Subject: "user-1", Email: "user@example.com", Provider: "static"}, nil).
		Once()

	w := get(server.GetHandler(), "/v1/principals/me", "Bearer token-abc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"user-1","email":"user@example.com","provider":"static"}`, w.Body.String())

	requestID, err := uuid.Parse(w.Header().Get("X-Request-Id"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, requestID)
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	w := get(server.GetHandler(), "/nonexistent", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_NoMetricsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	w := get(server.GetHandler(), "/metrics", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecoveryAndLogger(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(createTestLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := get(router, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_StartRequiresRouter(t *testing.T) {
	server := NewServer(nil, "localhost", 0, "warden-test", createTestLogger())

	err := server.Start(context.Background())

	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_HTTPMetrics(t *testing.T) {
	provider, err := metrics.NewProvider("warden_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	logger := createTestLogger()
	server := NewServer(nil, "localhost", 0, "warden-test", logger)
	server.SetupRouter(
		t.Context(),
		func() (identityUseCase.PrincipalVerifier, error) { return nil, errors.New("unused") },
		func() (*identityHTTP.PrincipalHandler, error) { return nil, errors.New("unused") },
		RouterOptions{MeterProvider: provider.MeterProvider(), MetricsNamespace: "warden_test"},
	)

	assert.Equal(t, http.StatusOK, get(server.GetHandler(), "/health", "").Code)

	metricsServer, err := NewMetricsServer("localhost", 9090, provider, logger)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9090", metricsServer.Addr())

	w := get(metricsServer.GetHandler(), MetricsPath, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "warden_test_http_requests_total")

	w = get(metricsServer.GetHandler(), "/health", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), MetricsPath)
}

func TestNewMetricsServer_RequiresProvider(t *testing.T) {
	server, err := NewMetricsServer("localhost", 9090, nil, createTestLogger())

	assert.Nil(t, server)
	assert.Error(t, err)
}
