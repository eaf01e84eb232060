package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/allisson/warden/internal/errors"
)

// Storage lifecycle errors.
var (
	// ErrNotInitialized indicates the handle was requested outside the Ready state.
	ErrNotInitialized = apperrors.Wrap(apperrors.ErrUnavailable, "storage not initialized")

	// ErrAlreadyConnected indicates Connect was called on a manager that is already Ready.
	ErrAlreadyConnected = apperrors.Wrap(apperrors.ErrConflict, "storage already connected")

	// ErrInvalidState indicates Connect was called while connecting, after a failure, or after shutdown.
	ErrInvalidState = apperrors.Wrap(apperrors.ErrConflict, "invalid storage state")

	// ErrConnectFailed indicates the connection handshake failed. The manager is left in the Failed state.
	ErrConnectFailed = apperrors.Wrap(apperrors.ErrUnavailable, "storage connect failed")
)

// State is a step of the storage connection lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateReady
	StateFailed
	StateDisconnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Opener opens and verifies a connection pool.
type Opener func(ctx context.Context, cfg Config) (*sql.DB, error)

// Option configures a Manager.
type Option func(*Manager)

// WithOpener replaces the function used to open the connection pool.
func WithOpener(open Opener) Option {
	return func(m *Manager) {
		m.open = open
	}
}

// Manager owns the single shared connection pool.
//
// The lifecycle is Uninitialized -> Connecting -> Ready | Failed and Ready -> Disconnected.
// Failed and Disconnected are terminal: a Manager never reconnects.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	open   Opener

	mu    sync.RWMutex
	state State
	db    *sql.DB
}

// NewManager creates a Manager in the Uninitialized state.
func NewManager(cfg Config, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		logger: logger,
		open:   Open,
		state:  StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect performs the connection handshake. It is valid only from Uninitialized.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateUninitialized:
		m.state = StateConnecting
	case StateReady:
		m.mu.Unlock()
		return ErrAlreadyConnected
	default:
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: connect called in state %s", ErrInvalidState, state)
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "connecting to storage", slog.String("driver", m.cfg.Driver))

	db, err := m.open(ctx, m.cfg)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.state = StateFailed
		m.logger.ErrorContext(ctx, "storage connection failed",
			slog.String("driver", m.cfg.Driver),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	m.db = db
	m.state = StateReady
	m.logger.InfoContext(ctx, "storage connected", slog.String("driver", m.cfg.Driver))
	return nil
}

// Handle returns the shared connection pool. It never blocks waiting for Connect.
func (m *Manager) Handle() (*sql.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateReady {
		return nil, ErrNotInitialized
	}
	return m.db, nil
}

// Disconnect closes the connection pool. Calling it again after a successful
// disconnect is a no-op.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateDisconnected:
		m.mu.Unlock()
		return nil
	case StateReady:
	default:
		m.mu.Unlock()
		return ErrNotInitialized
	}

	db := m.db
	m.db = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.InfoContext(ctx, "storage disconnected")
	return nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// Ping checks the connection pool is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.Handle()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
