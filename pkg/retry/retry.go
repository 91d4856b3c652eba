package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config defines retry behavior.
// A zero Multiplier selects linear backoff (attempt × InitialDelay);
// any other value selects exponential backoff.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration // 0 means uncapped
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, only used by exponential backoff

	// Retryable decides whether an error is worth another attempt (default: IsRetryable).
	Retryable func(error) bool
	// OnRetry is invoked before each wait with the failed attempt number (1-based).
	OnRetry func(err error, attempt int, wait time.Duration)
}

// DefaultConfig returns the statement retry policy used against the target database:
// 5 attempts with linear waits of 2s, 4s, 6s and 8s between them.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  5,
		InitialDelay: 2 * time.Second,
		Retryable:    IsConnectionLost,
	}
}

// ConnectConfig returns the policy used while opening a connection:
// 3 attempts with exponential backoff starting at 500ms, 10% jitter.
func ConnectConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// LinearBackOff waits attempt × Step between attempts, optionally capped at Max.
type LinearBackOff struct {
	Step    time.Duration
	Max     time.Duration
	attempt int
}

// NextBackOff returns the wait before the next attempt.
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.attempt++
	wait := time.Duration(b.attempt) * b.Step
	if b.Max > 0 && wait > b.Max {
		wait = b.Max
	}
	return wait
}

// Reset restarts the sequence.
func (b *LinearBackOff) Reset() {
	b.attempt = 0
}

func newBackOff(ctx context.Context, cfg *Config) backoff.BackOff {
	var b backoff.BackOff
	if cfg.Multiplier == 0 {
		b = &LinearBackOff{Step: cfg.InitialDelay, Max: cfg.MaxDelay}
	} else {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = cfg.InitialDelay
		exp.Multiplier = cfg.Multiplier
		exp.RandomizationFactor = cfg.JitterFactor
		exp.MaxElapsedTime = 0
		if cfg.MaxDelay > 0 {
			exp.MaxInterval = cfg.MaxDelay
		}
		exp.Reset()
		b = exp
	}

	maxRetries := cfg.MaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// Do executes fn until it succeeds or the attempts are exhausted, retrying every error.
// Returns nil on success, or the last error.
// Respects context cancellation during wait periods.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	all := *cfg
	all.Retryable = func(error) bool { return true }
	return DoIfRetryable(ctx, &all, fn)
}

// DoWithResult executes fn and returns both result and error.
// Useful for functions that return values (like sql.Open followed by Ping).
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		r, err := fn()
		result = r
		return err
	})
	return result, err
}

// DoIfRetryable only retries errors accepted by cfg.Retryable.
// Any other error is returned immediately from the attempt that produced it.
// Respects context cancellation during wait periods.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if cfg.OnRetry != nil {
		notify = func(err error, wait time.Duration) {
			cfg.OnRetry(err, attempt, wait)
		}
	}

	return backoff.RetryNotify(operation, newBackOff(ctx, cfg), notify)
}

// connectionLostPatterns are driver messages meaning the session is gone and a
// fresh connection could succeed.
var connectionLostPatterns = []string{
	"bad connection",
	"invalid connection",
	"connection reset",
	"broken pipe",
	"connection is in closed state",
	"use of closed network connection",
	"server has gone away",
	"lost connection",
	"protocol_connection_lost",
	"econnreset",
	"epipe",
	"unexpected eof",
	"conn closed",
	"connection refused",
}

// IsConnectionLost reports whether err means the database session was lost.
// Constraint violations and SQL errors are never connection-lost errors.
func IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range connectionLostPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// RetryableError is an interface for errors that explicitly declare their retryability.
type RetryableError interface {
	error
	IsRetryable() bool
}

// IsRetryable determines if an error is transient and worth retrying.
// Connection loss, timeouts, deadlocks and lock waits qualify.
//
// The function checks errors in this order:
// 1. If the error implements RetryableError, use its IsRetryable() method
// 2. Connection-lost classification
// 3. Pattern-match against known transient error strings
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	if IsConnectionLost(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"timed out",
		"too many connections",
		"deadlock",
		"lock wait timeout",
		"temporary failure",
		"no such host",
		"network is unreachable",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
