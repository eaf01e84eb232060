// Package errors defines the failure categories shared by every warden component.
//
// Components never return a category directly. They wrap one with Wrap so the message
// says what failed, and transports recover the category with Is or CategoryOf to pick
// a status code.
package errors

import (
	"errors"
	"fmt"
)

// Category is a class of failure. Categories are compared by identity.
type Category struct {
	text      string
	retryable bool
}

func (c *Category) Error() string {
	return c.text
}

// Retryable reports whether repeating the failed operation unchanged may succeed.
func (c *Category) Retryable() bool {
	return c.retryable
}

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = &Category{text: "not found"}

	// ErrConflict indicates the operation clashes with existing data or the current state.
	ErrConflict = &Category{text: "conflict"}

	// ErrInvalidInput indicates the caller supplied data that fails validation.
	ErrInvalidInput = &Category{text: "invalid input"}

	// ErrUnauthorized indicates a missing or rejected credential.
	ErrUnauthorized = &Category{text: "unauthorized"}

	// ErrForbidden indicates an authenticated principal lacks permission.
	ErrForbidden = &Category{text: "forbidden"}

	// ErrUnavailable indicates the identity provider or storage cannot serve the request right now.
	ErrUnavailable = &Category{text: "unavailable", retryable: true}

	// ErrMisconfigured indicates a wiring mistake. Retrying never helps.
	ErrMisconfigured = &Category{text: "misconfigured"}
)

// Wrap returns an error reading "message: cause" that still matches cause with Is.
// A nil cause yields nil.
func Wrap(cause error, message string) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, cause)
}

// CategoryOf returns the first Category in err's tree, or nil when there is none.
func CategoryOf(err error) *Category {
	var category *Category
	if errors.As(err, &category) {
		return category
	}
	return nil
}

// IsRetryable reports whether err carries a retryable category.
func IsRetryable(err error) bool {
	category := CategoryOf(err)
	return category != nil && category.Retryable()
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
