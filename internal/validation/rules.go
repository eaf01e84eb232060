// Package validation holds the string rules shared by request DTOs, CLI input and config.
package validation

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/warden/internal/errors"
)

// WrapValidationError turns a jellydator error into ErrInvalidInput, keeping its field messages.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// rule builds a string rule. Like the jellydator built-ins, it accepts the empty string.
func rule(code, message string, ok func(string) bool) validation.StringRule {
	return validation.NewStringRuleWithError(ok, validation.NewError(code, message))
}

var (
	// Email accepts a bare address with a dotted domain. Display-name forms are rejected.
	Email = rule("validation_email_format", "must be a valid email address", func(s string) bool {
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return false
		}
		_, domain, _ := strings.Cut(s, "@")
		return strings.Contains(strings.Trim(domain, "."), ".")
	})

	// NoWhitespace rejects leading or trailing whitespace.
	NoWhitespace = rule("validation_no_whitespace", "must not contain leading or trailing whitespace", func(s string) bool {
		return s == strings.TrimSpace(s)
	})

	// NotBlank rejects strings made only of whitespace.
	NotBlank = rule("validation_not_blank", "must not be blank", func(s string) bool {
		return strings.TrimSpace(s) != ""
	})

	// Subject accepts printable characters without any whitespace.
	Subject = rule("validation_subject", "must contain printable characters without whitespace", func(s string) bool {
		return !strings.ContainsFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || !unicode.IsPrint(r)
		})
	})

	// HTTPURL accepts absolute http and https URLs.
	HTTPURL = rule("validation_http_url", "must be an absolute http(s) URL", func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})
)
