// Package database owns the shared storage connection and its lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	apperrors "github.com/allisson/warden/internal/errors"
)

// ErrUnknownDriver indicates no database/sql driver is registered under the configured name.
var ErrUnknownDriver = apperrors.Wrap(apperrors.ErrMisconfigured, "unknown storage driver")

// Config describes the storage pool. ConnectTimeout bounds the initial ping only.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration
}

// Open is the default Opener: it opens the pool for cfg, sizes it and pings it.
// A pool that fails the ping is closed before returning.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if !slices.Contains(sql.Drivers(), cfg.Driver) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("open %s pool: %w", cfg.Driver, err)
	}
	cfg.size(db)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// size applies the pool limits. Zero values keep the database/sql defaults.
func (c Config) size(db *sql.DB) {
	if c.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(c.MaxOpenConnections)
	}
	if c.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(c.MaxIdleConnections)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
}
