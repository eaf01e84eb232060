package dto

import (
	"time"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// PrincipalResponse represents a principal in API responses.
type PrincipalResponse struct {
	Subject  string `json:"subject"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
}

// MapPrincipalToResponse converts a domain principal to an API response.
func MapPrincipalToResponse(principal *identityDomain.Principal) PrincipalResponse {
	return PrincipalResponse{
		Subject:  principal.Subject,
		Email:    principal.Email,
		Provider: principal.Provider,
	}
}

// ProfileResponse represents a principal directory entry.
type ProfileResponse struct {
	Subject     string    `json:"subject"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapProfileToResponse converts a domain profile to an API response.
func MapProfileToResponse(profile *identityDomain.Profile) ProfileResponse {
	return ProfileResponse{
		Subject:     profile.Subject,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		CreatedAt:   profile.CreatedAt,
	}
}
