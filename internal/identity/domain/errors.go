package domain

import (
	"errors"

	apperrors "github.com/allisson/warden/internal/errors"
)

// Identity errors returned to consumers. They never carry provider specific types.
var (
	// ErrInvalidCredential indicates the credential is missing, malformed, expired or revoked.
	ErrInvalidCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credential")

	// ErrPrincipalNotFound indicates the provider has no such subject.
	ErrPrincipalNotFound = apperrors.Wrap(apperrors.ErrNotFound, "principal not found")

	// ErrIdentityProviderUnavailable indicates the provider could not be reached. Retryable.
	ErrIdentityProviderUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "identity provider unavailable")

	// ErrInvalidSubject indicates an empty subject identifier.
	ErrInvalidSubject = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject")

	// ErrPrincipalAlreadyExists indicates the subject is already registered in the principal directory.
	ErrPrincipalAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "principal already exists")
)

// Provider failure classes. Provider adapters return errors wrapping one of these and the
// verifier translates them into the identity errors above.
var (
	ErrCredentialRejected  = errors.New("credential rejected by provider")
	ErrSubjectUnknown      = errors.New("subject unknown to provider")
	ErrProviderUnreachable = errors.New("provider unreachable")
)
