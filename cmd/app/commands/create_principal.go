package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	identityDomain "github.com/allisson/warden/internal/identity/domain"
	"github.com/allisson/warden/internal/identity/http/dto"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
	customValidation "github.com/allisson/warden/internal/validation"
)

// RunCreatePrincipal registers a profile in the principal directory and prints it.
//
// Requirements: Database must be migrated and the storage connected.
func RunCreatePrincipal(
	ctx context.Context,
	profileUseCase identityUseCase.ProfileUseCase,
	logger *slog.Logger,
	writer io.Writer,
	subject, email, displayName, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	req := dto.CreatePrincipalRequest{
		Subject:     subject,
		Email:       email,
		DisplayName: displayName,
	}
	if err := req.Validate(); err != nil {
		return customValidation.WrapValidationError(err)
	}

	logger.Info("creating principal", slog.String("subject", subject))

	profile, err := profileUseCase.Create(ctx, &identityDomain.CreateProfileInput{
		Subject:     req.Subject,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("failed to create principal: %w", err)
	}

	if format == formatJSON {
		if err := writeJSON(writer, dto.MapProfileToResponse(profile)); err != nil {
			return err
		}
	} else {
		outputProfileText(writer, profile)
	}

	logger.Info("principal created", slog.String("subject", profile.Subject))
	return nil
}

// outputProfileText writes the profile in human-readable text format.
func outputProfileText(w io.Writer, profile *identityDomain.Profile) {
	var b strings.Builder
	b.WriteString("Principal created successfully\n")
	fmt.Fprintf(&b, "Subject:      %s\n", profile.Subject)
	if profile.Email != "" {
		fmt.Fprintf(&b, "Email:        %s\n", profile.Email)
	}
	if profile.DisplayName != "" {
		fmt.Fprintf(&b, "Display name: %s\n", profile.DisplayName)
	}
	fmt.Fprintf(&b, "Created at:   %s\n", profile.CreatedAt.UTC().Format(time.RFC3339))

	_, _ = io.WriteString(w, b.String())
}
