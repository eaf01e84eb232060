package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/warden/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "warden", cfg.ServiceName)
				assert.Equal(t, 10*time.Second, cfg.ServerShutdownTimeout)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5, cfg.DBMaxIdleConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, 10*time.Second, cfg.DBConnectTimeout)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, IdentityProviderSupabase, cfg.IdentityProvider)
				assert.Equal(t, 5*time.Second, cfg.IdentityTimeout)
				assert.Equal(t, uint32(5), cfg.IdentityBreakerFailures)
				assert.Equal(t, 30*time.Second, cfg.JWTClockSkew)
				assert.Equal(t, 5*time.Minute, cfg.JWKSCacheTTL)
				assert.True(t, cfg.RateLimitEnabled)
				assert.Equal(t, 10.0, cfg.RateLimitRequestsPerSec)
				assert.Equal(t, 20, cfg.RateLimitBurst)
				assert.False(t, cfg.CORSEnabled)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "warden", cfg.MetricsNamespace)
				assert.Equal(t, 8081, cfg.MetricsPort)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":                  "mysql",
				"DB_CONNECTION_STRING":       "user:password@tcp(localhost:3306)/warden?parseTime=true",
				"DB_MAX_OPEN_CONNECTIONS":    "50",
				"DB_MAX_IDLE_CONNECTIONS":    "10",
				"DB_CONN_MAX_LIFETIME":       "10",
				"DB_CONNECT_TIMEOUT_SECONDS": "3",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/warden?parseTime=true", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, 3*time.Second, cfg.DBConnectTimeout)
			},
		},
		{
			name: "load jwks identity configuration",
			envVars: map[string]string{
				"IDENTITY_PROVIDER":         "jwks",
				"JWKS_URL":                  "https://issuer.example.com/.well-known/jwks.json",
				"JWT_ISSUER":                "https://issuer.example.com/",
				"JWT_AUDIENCE":              "warden",
				"JWT_CLOCK_SKEW_SECONDS":    "5",
				"JWKS_CACHE_TTL_SECONDS":    "60",
				"IDENTITY_TIMEOUT_SECONDS":  "2",
				"IDENTITY_BREAKER_FAILURES": "3",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, IdentityProviderJWKS, cfg.IdentityProvider)
				assert.Equal(t, "https://issuer.example.com/.well-known/jwks.json", cfg.JWKSURL)
				assert.Equal(t, "https://issuer.example.com/", cfg.JWTIssuer)
				assert.Equal(t, "warden", cfg.JWTAudience)
				assert.Equal(t, 5*time.Second, cfg.JWTClockSkew)
				assert.Equal(t, time.Minute, cfg.JWKSCacheTTL)
				assert.Equal(t, 2*time.Second, cfg.IdentityTimeout)
				assert.Equal(t, uint32(3), cfg.IdentityBreakerFailures)
			},
		},
		{
			name: "load rate limit and cors configuration",
			envVars: map[string]string{
				"RATE_LIMIT_ENABLED":          "false",
				"RATE_LIMIT_REQUESTS_PER_SEC": "2.5",
				"RATE_LIMIT_BURST":            "4",
				"CORS_ENABLED":                "true",
				"CORS_ALLOW_ORIGINS":          "https://app.example.com",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.RateLimitEnabled)
				assert.Equal(t, 2.5, cfg.RateLimitRequestsPerSec)
				assert.Equal(t, 4, cfg.RateLimitBurst)
				assert.True(t, cfg.CORSEnabled)
				assert.Equal(t, "https://app.example.com", cfg.CORSAllowOrigins)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			tt.validate(t, Load())
		})
	}
}

func validConfig() *Config {
	return &Config{
		ServerPort:                 8080,
		ServiceName:                "warden",
		DBDriver:                   "postgres",
		DBConnectionString:         "postgres://localhost/warden",
		LogLevel:                   "info",
		IdentityProvider:           IdentityProviderStatic,
		IdentityStaticCredentials:  "token=user-1",
		IdentityBreakerFailures:    5,
		IdentityBreakerMaxRequests: 1,
		RateLimitEnabled:           true,
		RateLimitRequestsPerSec:    10,
		RateLimitBurst:             20,
		MetricsEnabled:             true,
		MetricsNamespace:           "warden",
		MetricsPort:                8081,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(cfg *Config) { cfg.DBDriver = "sqlite" },
			wantErr: "DBDriver",
		},
		{
			name:    "unknown identity provider",
			mutate:  func(cfg *Config) { cfg.IdentityProvider = "ldap" },
			wantErr: "IdentityProvider",
		},
		{
			name: "supabase without url",
			mutate: func(cfg *Config) {
				cfg.IdentityProvider = IdentityProviderSupabase
				cfg.SupabaseServiceRoleKey = "service-key"
			},
			wantErr: "SupabaseURL",
		},
		{
			name: "supabase with invalid url",
			mutate: func(cfg *Config) {
				cfg.IdentityProvider = IdentityProviderSupabase
				cfg.SupabaseURL = "ftp://example.com"
				cfg.SupabaseServiceRoleKey = "service-key"
			},
			wantErr: "SupabaseURL",
		},
		{
			name: "supabase complete",
			mutate: func(cfg *Config) {
				cfg.IdentityProvider = IdentityProviderSupabase
				cfg.SupabaseURL = "https://abcd.supabase.co"
				cfg.SupabaseServiceRoleKey = "service-key"
			},
		},
		{
			name:    "jwks without url",
			mutate:  func(cfg *Config) { cfg.IdentityProvider = IdentityProviderJWKS },
			wantErr: "JWKSURL",
		},
		{
			name:    "static without credentials",
			mutate:  func(cfg *Config) { cfg.IdentityStaticCredentials = "" },
			wantErr: "IdentityStaticCredentials",
		},
		{
			name:    "rate limit without burst",
			mutate:  func(cfg *Config) { cfg.RateLimitBurst = 0 },
			wantErr: "RateLimitBurst",
		},
		{
			name: "rate limit disabled ignores limits",
			mutate: func(cfg *Config) {
				cfg.RateLimitEnabled = false
				cfg.RateLimitBurst = 0
				cfg.RateLimitRequestsPerSec = 0
			},
		},
		{
			name:    "invalid port",
			mutate:  func(cfg *Config) { cfg.ServerPort = 70000 },
			wantErr: "ServerPort",
		},
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "verbose" },
			wantErr: "LogLevel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_GetGinMode(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: ""}).GetGinMode())
}
