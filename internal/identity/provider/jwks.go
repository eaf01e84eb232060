package provider

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
	"github.com/allisson/warden/internal/identity/usecase"
)

// minJWKSRefreshInterval bounds how often an unknown key id can force a JWKS refetch.
const minJWKSRefreshInterval = 10 * time.Second

// JWKSConfig configures a JWKSProvider.
type JWKSConfig struct {
	JWKSURL    string
	Issuer     string        // Expected iss claim; not checked when empty
	Audience   string        // Expected aud claim; not checked when empty
	ClockSkew  time.Duration // Leeway applied to exp, nbf and iat
	CacheTTL   time.Duration // How long fetched keys are trusted (default 1h)
	HTTPClient *http.Client  // Defaults to a client with a 10s timeout
}

// JWKSProvider verifies signed JWTs against a JWKS endpoint. Subject lookups go to the
// local principal directory.
type JWKSProvider struct {
	cfg    JWKSConfig
	keys   *jwksCache
	repo   usecase.PrincipalRepository
	logger *slog.Logger
}

// NewJWKSProvider creates a JWKSProvider.
func NewJWKSProvider(cfg JWKSConfig, repo usecase.PrincipalRepository, logger *slog.Logger) *JWKSProvider {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &JWKSProvider{
		cfg: cfg,
		keys: &jwksCache{
			url:    cfg.JWKSURL,
			ttl:    cfg.CacheTTL,
			client: cfg.HTTPClient,
			keys:   make(map[string]any),
			logger: logger,
		},
		repo:   repo,
		logger: logger,
	}
}

// Name returns "jwks".
func (p *JWKSProvider) Name() string {
	return NameJWKS
}

// Verify validates the token signature and registered claims.
func (p *JWKSProvider) Verify(ctx context.Context, credential string) (*identityDomain.Claims, error) {
	claims := &tokenClaims{}

	_, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return p.keys.getKey(ctx, kid)
	}, p.parserOptions()...)
	if err != nil {
		if errors.Is(err, identityDomain.ErrProviderUnreachable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", identityDomain.ErrCredentialRejected, err)
	}

	return &identityDomain.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}

// GetBySubject looks the subject up in the principal directory.
func (p *JWKSProvider) GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error) {
	profile, err := p.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, identityDomain.ErrSubjectUnknown) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", identityDomain.ErrProviderUnreachable, err)
	}
	return profile, nil
}

func (p *JWKSProvider) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(p.cfg.ClockSkew),
	}
	if p.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.cfg.Issuer))
	}
	if p.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.cfg.Audience))
	}
	return opts
}

// tokenClaims are the JWT claims the provider reads.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// jwksCache caches public keys by key id.
type jwksCache struct {
	url    string
	ttl    time.Duration
	client *http.Client
	logger *slog.Logger

	mu        sync.RWMutex
	keys      map[string]any
	fetchedAt time.Time
}

// getKey returns the key for kid, refreshing the set when it is stale or the kid is unknown.
func (c *jwksCache) getKey(ctx context.Context, kid string) (any, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	fresh := time.Since(c.fetchedAt) < c.ttl
	c.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key, ok = c.keys[kid]
	age := time.Since(c.fetchedAt)
	if ok && age < c.ttl {
		return key, nil
	}
	if !ok && age < minJWKSRefreshInterval {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}

	if err := c.refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", identityDomain.ErrProviderUnreachable, err)
	}

	key, ok = c.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

// refresh fetches the key set. Must be called with the write lock held.
func (c *jwksCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read JWKS: %w", err)
	}

	var set jwkSet
	if err := json.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]any, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Use != "" && jwk.Use != "sig" {
			continue
		}
		key, err := jwk.publicKey()
		if err != nil {
			c.logger.Warn("skipping JWKS key", slog.String("kid", jwk.Kid), slog.Any("error", err))
			continue
		}
		keys[jwk.Kid] = key
	}

	c.keys = keys
	c.fetchedAt = time.Now()
	c.logger.Debug("JWKS refreshed", slog.Int("keys", len(keys)))
	return nil
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Crv string `json:"crv"`
	N   string `json:"n"`
	E   string `json:"e"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func (k jwk) publicKey() (any, error) {
	switch k.Kty {
	case "RSA":
		n, err := decodeSegment(k.N)
		if err != nil {
			return nil, fmt.Errorf("invalid modulus: %w", err)
		}
		e, err := decodeSegment(k.E)
		if err != nil {
			return nil, fmt.Errorf("invalid exponent: %w", err)
		}
		exponent := new(big.Int).SetBytes(e)
		if !exponent.IsInt64() {
			return nil, errors.New("RSA exponent too large")
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exponent.Int64())}, nil
	case "EC":
		curve, err := curveByName(k.Crv)
		if err != nil {
			return nil, err
		}
		x, err := decodeSegment(k.X)
		if err != nil {
			return nil, fmt.Errorf("invalid x coordinate: %w", err)
		}
		y, err := decodeSegment(k.Y)
		if err != nil {
			return nil, fmt.Errorf("invalid y coordinate: %w", err)
		}
		return &ecdsa.PublicKey{Curve: curve, X: new(big.Int).SetBytes(x), Y: new(big.Int).SetBytes(y)}, nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
}

func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func curveByName(name string) (elliptic.Curve, error) {
	switch name {
	case "P-256":
		return elliptic.P256(), nil
	case "P-384":
		return elliptic.P384(), nil
	case "P-521":
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported curve %q", name)
	}
}
