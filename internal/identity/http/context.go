// Package http provides the HTTP surface of the identity module: bearer authentication,
// per-subject rate limiting and principal endpoints.
package http

import (
	"context"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// principalKey is a context key type for storing authenticated principals.
type principalKey struct{}

// WithPrincipal stores an authenticated principal in the context.
func WithPrincipal(ctx context.Context, principal *identityDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns (principal, true) if present, or (nil, false) if the request was not authenticated.
func GetPrincipal(ctx context.Context) (*identityDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*identityDomain.Principal)
	return principal, ok && principal != nil
}
