// Package provider implements identity providers: Supabase (GoTrue), JWKS-verified JWTs and a
// static credential table for local development.
//
// Every provider classifies its failures by wrapping one of the domain provider sentinels
// (ErrCredentialRejected, ErrSubjectUnknown, ErrProviderUnreachable).
package provider

import (
	"context"
	"fmt"
	"strings"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// Provider names.
const (
	NameSupabase = "supabase"
	NameJWKS     = "jwks"
	NameStatic   = "static"
)

// StaticProvider verifies credentials against an in-memory table.
type StaticProvider struct {
	credentials map[string]identityDomain.Claims
}

// NewStaticProvider creates a StaticProvider from a credential -> claims table.
func NewStaticProvider(credentials map[string]identityDomain.Claims) *StaticProvider {
	table := make(map[string]identityDomain.Claims, len(credentials))
	for credential, claims := range credentials {
		table[credential] = claims
	}
	return &StaticProvider{credentials: table}
}

// Name returns "static".
func (s *StaticProvider) Name() string {
	return NameStatic
}

// Verify returns the claims registered for credential.
func (s *StaticProvider) Verify(ctx context.Context, credential string) (*identityDomain.Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims, ok := s.credentials[credential]
	if !ok {
		return nil, identityDomain.ErrCredentialRejected
	}
	return &claims, nil
}

// GetBySubject returns the profile of a subject present in the table.
func (s *StaticProvider) GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, claims := range s.credentials {
		if claims.Subject == subject {
			return &identityDomain.Profile{
				Subject: claims.Subject,
				Email:   claims.Email,
			}, nil
		}
	}
	return nil, fmt.Errorf("subject %q: %w", subject, identityDomain.ErrSubjectUnknown)
}

// ParseStaticCredentials parses "credential=subject[:email],..." into a credential table.
func ParseStaticCredentials(value string) (map[string]identityDomain.Claims, error) {
	credentials := make(map[string]identityDomain.Claims)

	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		credential, identity, ok := strings.Cut(entry, "=")
		credential = strings.TrimSpace(credential)
		if !ok || credential == "" {
			return nil, fmt.Errorf("invalid static credential entry %q: expected credential=subject[:email]", entry)
		}

		subject, email, _ := strings.Cut(identity, ":")
		subject = strings.TrimSpace(subject)
		if subject == "" {
			return nil, fmt.Errorf("invalid static credential entry %q: empty subject", entry)
		}

		if _, exists := credentials[credential]; exists {
			return nil, fmt.Errorf("duplicate static credential for subject %q", subject)
		}

		credentials[credential] = identityDomain.Claims{
			Subject: subject,
			Email:   strings.TrimSpace(email),
		}
	}

	return credentials, nil
}
