// Package domain defines the identity models shared by providers, the verifier and transport.
//
// A Principal is the trusted result of verifying a bearer credential. It is built per call
// and never persisted or cached.
package domain

import (
	"strings"
	"time"
)

// Claims is what an identity provider vouches for after verifying a credential.
type Claims struct {
	Subject string
	Email   string
}

// Profile is what an identity provider knows about an already verified subject.
type Profile struct {
	Subject     string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Principal is an authenticated identity.
type Principal struct {
	Subject  string // Unique subject identifier assigned by the provider
	Email    string // Optional contact address
	Provider string // Name of the provider that vouched for the subject
}

// NewPrincipalFromClaims builds a principal from verified claims.
func NewPrincipalFromClaims(provider string, claims *Claims) *Principal {
	return &Principal{
		Subject:  claims.Subject,
		Email:    strings.TrimSpace(claims.Email),
		Provider: provider,
	}
}

// NewPrincipalFromProfile builds a principal from a provider profile.
func NewPrincipalFromProfile(provider string, profile *Profile) *Principal {
	return &Principal{
		Subject:  profile.Subject,
		Email:    strings.TrimSpace(profile.Email),
		Provider: provider,
	}
}

// CreateProfileInput contains the fields required to register a profile in the principal directory.
type CreateProfileInput struct {
	Subject     string
	Email       string
	DisplayName string
}
