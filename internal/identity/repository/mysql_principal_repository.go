package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	identityDomain "github.com/allisson/warden/internal/identity/domain"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// MySQLPrincipalRepository implements principal persistence for MySQL.
type MySQLPrincipalRepository struct {
	source database.HandleSource
}

// Create inserts a new profile into the principals table.
func (m *MySQLPrincipalRepository) Create(ctx context.Context, profile *identityDomain.Profile) error {
	db, err := m.source.Handle()
	if err != nil {
		return err
	}
	querier := database.GetTx(ctx, db)

	query := `INSERT INTO principals (subject, email, display_name, created_at) VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, profile.Subject, profile.Email, profile.DisplayName, profile.CreatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return identityDomain.ErrPrincipalAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create principal")
	}
	return nil
}

// GetBySubject retrieves a profile by subject.
func (m *MySQLPrincipalRepository) GetBySubject(
	ctx context.Context,
	subject string,
) (*identityDomain.Profile, error) {
	db, err := m.source.Handle()
	if err != nil {
		return nil, err
	}
	querier := database.GetTx(ctx, db)

	query := `SELECT subject, email, display_name, created_at FROM principals WHERE subject = ?`

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

// NewMySQLPrincipalRepository creates a new MySQL principal repository.
func NewMySQLPrincipalRepository(source database.HandleSource) *MySQLPrincipalRepository {
	return &MySQLPrincipalRepository{source: source}
}
