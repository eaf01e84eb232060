package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/allisson/warden/internal/database"
	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// profileUseCase implements ProfileUseCase on the principal directory.
type profileUseCase struct {
	txManager database.TxManager
	repo      PrincipalRepository
}

// NewProfileUseCase creates a ProfileUseCase.
func NewProfileUseCase(txManager database.TxManager, repo PrincipalRepository) ProfileUseCase {
	return &profileUseCase{
		txManager: txManager,
		repo:      repo,
	}
}

// Create registers a profile unless the subject already exists.
func (p *profileUseCase) Create(
	ctx context.Context,
	input *identityDomain.CreateProfileInput,
) (*identityDomain.Profile, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, identityDomain.ErrInvalidSubject
	}

	profile := &identityDomain.Profile{
		Subject:     subject,
		Email:       strings.TrimSpace(input.Email),
		DisplayName: strings.TrimSpace(input.DisplayName),
		CreatedAt:   time.Now().UTC(),
	}

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := p.repo.GetBySubject(ctx, subject)
		if err == nil {
			return identityDomain.ErrPrincipalAlreadyExists
		}
		if !errors.Is(err, identityDomain.ErrSubjectUnknown) {
			return err
		}
		return p.repo.Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}
