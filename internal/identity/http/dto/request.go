// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/warden/internal/validation"
)

// GetPrincipalRequest contains the parameters for looking up a principal.
type GetPrincipalRequest struct {
	Subject string `uri:"subject"`
}

// Validate checks if the get principal request is valid.
func (r *GetPrincipalRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Subject,
			validation.Length(1, 255),
		),
	)
}

// CreatePrincipalRequest contains the parameters for registering a profile in the principal directory.
type CreatePrincipalRequest struct {
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Validate checks if the create principal request is valid.
func (r *CreatePrincipalRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Subject,
			validation.Length(1, 255),
		),
		validation.Field(&r.Email,
			customValidation.NoWhitespace,
			customValidation.Email,
			validation.Length(0, 320),
		),
		validation.Field(&r.DisplayName,
			customValidation.NoWhitespace,
			validation.Length(0, 255),
		),
	)
}
