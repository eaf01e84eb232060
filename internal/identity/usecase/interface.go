// Package usecase defines the identity verification business logic and the collaborators it depends on.
package usecase

import (
	"context"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// IdentityProvider is an external identity service able to verify credentials and look up
// subjects. Implementations classify their failures by wrapping ErrCredentialRejected,
// ErrSubjectUnknown or ErrProviderUnreachable from the domain package.
type IdentityProvider interface {
	// Name identifies the provider in principals and logs (e.g. "supabase").
	Name() string

	// Verify checks the credential and returns the claims it vouches for.
	Verify(ctx context.Context, credential string) (*identityDomain.Claims, error)

	// GetBySubject returns the profile of an already verified subject.
	GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error)
}

// PrincipalRepository defines persistence operations for the local principal directory.
// Implementations must support transaction-aware operations via context propagation.
type PrincipalRepository interface {
	// Create stores a new profile.
	Create(ctx context.Context, profile *identityDomain.Profile) error

	// GetBySubject retrieves a profile. Returns an error wrapping ErrSubjectUnknown if not found.
	GetBySubject(ctx context.Context, subject string) (*identityDomain.Profile, error)
}

// PrincipalVerifier turns bearer credentials into principals. Consumers only ever see the
// identity errors of the domain package, whichever provider is configured.
type PrincipalVerifier interface {
	// VerifyCredential verifies the credential with the provider on every call.
	//
	// Returns ErrInvalidCredential for an empty, malformed, expired or revoked credential and
	// ErrIdentityProviderUnavailable when the provider cannot be reached.
	VerifyCredential(ctx context.Context, credential string) (*identityDomain.Principal, error)

	// GetPrincipal fetches the principal of an already verified subject.
	//
	// Returns ErrInvalidSubject for an empty subject, ErrPrincipalNotFound when the provider
	// reports no such subject and ErrIdentityProviderUnavailable when it cannot be reached.
	GetPrincipal(ctx context.Context, subject string) (*identityDomain.Principal, error)
}

// ProfileUseCase manages the local principal directory.
type ProfileUseCase interface {
	// Create registers a new profile. Returns ErrPrincipalAlreadyExists for a known subject.
	Create(ctx context.Context, input *identityDomain.CreateProfileInput) (*identityDomain.Profile, error)
}
