package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/warden/internal/identity/http/dto"
	identityUseCase "github.com/allisson/warden/internal/identity/usecase"
)

// RunVerifyCredential verifies credential with the configured identity provider and prints
// the resulting principal. The credential itself is never logged or printed.
func RunVerifyCredential(
	ctx context.Context,
	verifier identityUseCase.PrincipalVerifier,
	logger *slog.Logger,
	writer io.Writer,
	credential, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	principal, err := verifier.VerifyCredential(ctx, credential)
	if err != nil {
		return fmt.Errorf("failed to verify credential: %w", err)
	}

	logger.Info("credential verified",
		slog.String("subject", principal.Subject),
		slog.String("provider", principal.Provider),
	)

	if format == formatJSON {
		return writeJSON(writer, dto.MapPrincipalToResponse(principal))
	}

	_, err = fmt.Fprintf(writer, "Credential is valid\nSubject:  %s\nEmail:    %s\nProvider: %s\n",
		principal.Subject,
		principal.Email,
		principal.Provider,
	)
	return err
}
