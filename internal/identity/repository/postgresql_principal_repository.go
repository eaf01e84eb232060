// Package repository implements the principal directory on PostgreSQL and MySQL.
//
// Repositories acquire the connection pool from the storage manager on every call, so they
// fail with database.ErrNotInitialized before startup completes or after shutdown.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// PostgreSQLPrincipalRepository implements principal persistence for PostgreSQL.
type PostgreSQLPrincipalRepository struct {
	source database.HandleSource
}

// Create inserts a new profile into the principals table.
func (p *PostgreSQLPrincipalRepository) Create(ctx context.Context, profile *identityDomain.Profile) error {
	db, err := p.source.Handle()
	if err != nil {
		return err
	}
	querier := database.GetTx(ctx, db)

	query := `INSERT INTO principals (subject, email, display_name, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err = querier.ExecContext(ctx, query, profile.Subject, profile.Email, profile.DisplayName, profile.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return identityDomain.ErrPrincipalAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create principal")
	}
	return nil
}

// GetBySubject retrieves a profile by subject.
func (p *PostgreSQLPrincipalRepository) GetBySubject(
	ctx context.Context,
	subject string,
) (*identityDomain.Profile, error) {
	db, err := p.source.Handle()
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, db)

	query := `SELECT subject, email, display_name, created_at FROM principals WHERE subject = $1`

	var profile identityDomain.Profile
	err = querier.QueryRowContext(ctx, query, subject).Scan(
		&profile.Subject,
		&profile.Email,
		&profile.DisplayName,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("principal %q: %w", subject, identityDomain.ErrSubjectUnknown)
		}
		return nil, apperrors.Wrap(err, "failed to get principal")
	}

	return &profile, nil
}

// NewPostgreSQLPrincipalRepository creates a new PostgreSQL principal repository.
func NewPostgreSQLPrincipalRepository(source database.HandleSource) *PostgreSQLPrincipalRepository {
	return &PostgreSQLPrincipalRepository{source: source}
}
