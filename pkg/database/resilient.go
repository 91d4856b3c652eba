package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/logging"
	"github.com/ekaya-inc/heritage-importer/pkg/retry"
)

// State is the lifecycle state of a ResilientConn.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DialFunc opens a fresh pool.
type DialFunc func(ctx context.Context) (*sql.DB, error)

// ResilientConn executes statements against the target database and reopens
// the pool when the session is lost.
//
// Transitions: Disconnected -> Connected on Connect; Connected -> Reconnecting on
// a connection-class error; Reconnecting -> Connected or Disconnected depending
// on the dial outcome. Only one reconnect runs at a time; a caller that finds one
// in progress returns without dialing.
type ResilientConn struct {
	dial             DialFunc
	logger           *zap.Logger
	isConnectionLost func(error) bool
	maxAttempts      int
	retryDelay       time.Duration

	mu           sync.Mutex
	state        State
	db           *sql.DB
	reconnecting bool
	lost         bool // last reconnect failed; the next attempt dials again
}

// ResilientOption configures a ResilientConn.
type ResilientOption func(*ResilientConn)

// WithConnectionLost replaces the connection-loss classifier (default retry.IsConnectionLost).
func WithConnectionLost(fn func(error) bool) ResilientOption {
	return func(rc *ResilientConn) { rc.isConnectionLost = fn }
}

// WithRetry sets the attempt bound and the linear backoff step.
func WithRetry(maxAttempts int, delay time.Duration) ResilientOption {
	return func(rc *ResilientConn) {
		rc.maxAttempts = maxAttempts
		rc.retryDelay = delay
	}
}

// NewResilientConn creates a disconnected ResilientConn. Call Connect before use.
func NewResilientConn(dial DialFunc, logger *zap.Logger, opts ...ResilientOption) *ResilientConn {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := retry.DefaultConfig()
	rc := &ResilientConn{
		dial:             dial,
		logger:           logger.Named("resilient-conn"),
		isConnectionLost: retry.IsConnectionLost,
		maxAttempts:      defaults.MaxAttempts,
		retryDelay:       defaults.InitialDelay,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Connect opens the pool. Calling it while connected is a no-op.
func (rc *ResilientConn) Connect(ctx context.Context) error {
	rc.mu.Lock()
	if rc.state == StateConnected {
		rc.mu.Unlock()
		return nil
	}
	rc.mu.Unlock()

	db, err := rc.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	rc.mu.Lock()
	rc.db = db
	rc.state = StateConnected
	rc.lost = false
	rc.mu.Unlock()
	return nil
}

// State returns the current lifecycle state.
func (rc *ResilientConn) State() State {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// Close releases the pool.
func (rc *ResilientConn) Close() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.state = StateDisconnected
	rc.lost = false
	if rc.db == nil {
		return nil
	}
	err := rc.db.Close()
	rc.db = nil
	return err
}

// Execute runs a statement, retrying connection-class errors with linear backoff.
// Any other error is returned from the first attempt.
func (rc *ResilientConn) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := rc.withRetry(ctx, query, func(db *sql.DB) error {
		r, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// QueryValue scans the first column of the first row into dest.
// Returns apperrors.ErrNotFound when the query yields no rows.
func (rc *ResilientConn) QueryValue(ctx context.Context, dest any, query string, args ...any) error {
	err := rc.withRetry(ctx, query, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, query, args...).Scan(dest)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}

// QueryRows runs a query and hands the open result set to read. read runs once
// per attempt and must reset any state it accumulates.
func (rc *ResilientConn) QueryRows(ctx context.Context, read func(*sql.Rows) error, query string, args ...any) error {
	return rc.withRetry(ctx, query, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		if err := read(rows); err != nil {
			return err
		}
		return rows.Err()
	})
}

func (rc *ResilientConn) withRetry(ctx context.Context, query string, fn func(*sql.DB) error) error {
	cfg := &retry.Config{
		MaxAttempts:  rc.maxAttempts,
		InitialDelay: rc.retryDelay,
		Retryable:    rc.isConnectionLost,
		OnRetry: func(err error, attempt int, wait time.Duration) {
			rc.logger.Warn("Connection lost, reconnecting",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", rc.maxAttempts),
				zap.Duration("wait", wait),
				zap.String("query", logging.SanitizeQuery(query)),
				zap.String("error", logging.SanitizeError(err)))
			if !rc.reconnect(ctx) {
				rc.logger.Debug("Reconnect skipped or failed")
			}
		},
	}

	return retry.DoIfRetryable(ctx, cfg, func() error {
		db, err := rc.current()
		if err != nil {
			return err
		}
		return fn(db)
	})
}

// current returns the live pool. While another caller reconnects it reports
// driver.ErrBadConn so the statement is retried after the backoff.
func (rc *ResilientConn) current() (*sql.DB, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	switch {
	case rc.db != nil && rc.state == StateConnected:
		return rc.db, nil
	case rc.state == StateReconnecting, rc.lost:
		return nil, driver.ErrBadConn
	default:
		return nil, apperrors.ErrNotConnected
	}
}

// reconnect replaces the pool. Returns false when another reconnect is already
// running or the dial fails.
func (rc *ResilientConn) reconnect(ctx context.Context) bool {
	rc.mu.Lock()
	if rc.reconnecting {
		rc.mu.Unlock()
		return false
	}
	rc.reconnecting = true
	rc.state = StateReconnecting
	old := rc.db
	rc.db = nil
	rc.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	db, err := rc.dial(ctx)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.reconnecting = false
	if err != nil {
		rc.state = StateDisconnected
		rc.lost = true
		rc.logger.Error("Reconnect failed", zap.String("error", logging.SanitizeError(err)))
		return false
	}
	rc.db = db
	rc.state = StateConnected
	rc.lost = false
	rc.logger.Info("Reconnected to target database")
	return true
}
