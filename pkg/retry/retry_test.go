package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.InitialDelay)
	assert.Zero(t, cfg.Multiplier, "statement retries use linear backoff")
	require.NotNil(t, cfg.Retryable)
	assert.True(t, cfg.Retryable(driver.ErrBadConn))
	assert.False(t, cfg.Retryable(errors.New("Duplicate entry 'x' for key 'PRIMARY'")))
}

func TestLinearBackOff_Sequence(t *testing.T) {
	b := &LinearBackOff{Step: 2 * time.Second}

	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 4*time.Second, b.NextBackOff())
	assert.Equal(t, 6*time.Second, b.NextBackOff())
	assert.Equal(t, 8*time.Second, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 2*time.Second, b.NextBackOff())
}

func TestLinearBackOff_Capped(t *testing.T) {
	b := &LinearBackOff{Step: time.Second, Max: 2 * time.Second}

	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
}

func TestDo_Success(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		callCount++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		callCount++
		if callCount < 3 {
			return errors.New("syntax error near FROM")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, callCount, "Do retries every error")
}

func TestDo_AttemptsExhausted(t *testing.T) {
	callCount := 0
	expected := errors.New("still failing")
	err := Do(context.Background(), fastConfig(4), func() error {
		callCount++
		return expected
	})

	assert.ErrorIs(t, err, expected)
	assert.Equal(t, 4, callCount)
}

func TestDoWithResult_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	result, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		callCount++
		if callCount < 2 {
			return "", errors.New("connection refused")
		}
		return "connected", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "connected", result)
	assert.Equal(t, 2, callCount)
}

func TestDoIfRetryable_ConnectionErrorRetried(t *testing.T) {
	cfg := fastConfig(5)
	cfg.Retryable = IsConnectionLost

	var notified []int
	cfg.OnRetry = func(err error, attempt int, wait time.Duration) {
		notified = append(notified, attempt)
	}

	callCount := 0
	err := DoIfRetryable(context.Background(), cfg, func() error {
		callCount++
		if callCount < 3 {
			return fmt.Errorf("exec insert: %w", driver.ErrBadConn)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDoIfRetryable_NonRetryableReturnsImmediately(t *testing.T) {
	cfg := fastConfig(5)
	cfg.Retryable = IsConnectionLost

	callCount := 0
	constraintErr := errors.New("Error 1062 (23000): Duplicate entry 'abc' for key 'tags.backward_compatibility'")
	err := DoIfRetryable(context.Background(), cfg, func() error {
		callCount++
		return constraintErr
	})

	assert.ErrorIs(t, err, constraintErr)
	assert.Equal(t, 1, callCount, "constraint violations must never be retried")
}

func TestDoIfRetryable_ExhaustedReturnsLastError(t *testing.T) {
	cfg := fastConfig(5)
	cfg.Retryable = IsConnectionLost

	callCount := 0
	err := DoIfRetryable(context.Background(), cfg, func() error {
		callCount++
		return errors.New("read tcp 10.0.0.1:3306: connection reset by peer")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 5, callCount)
}

func TestDoIfRetryable_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxAttempts: 5, InitialDelay: time.Second, Retryable: IsConnectionLost}

	callCount := 0
	err := DoIfRetryable(ctx, cfg, func() error {
		callCount++
		cancel()
		return io.ErrUnexpectedEOF
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount)
}

func TestDoIfRetryable_NilConfigUsesDefaults(t *testing.T) {
	callCount := 0
	err := DoIfRetryable(context.Background(), nil, func() error {
		callCount++
		return errors.New("Unknown column 'foo' in 'field list'")
	})

	require.Error(t, err)
	assert.Equal(t, 1, callCount)
}

func TestIsConnectionLost(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"driver bad conn", driver.ErrBadConn, true},
		{"wrapped bad conn", fmt.Errorf("insert items: %w", driver.ErrBadConn), true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"mysql invalid connection", errors.New("invalid connection"), true},
		{"closed state", errors.New("Can't add new command when connection is in closed state"), true},
		{"gone away", errors.New("Error 2006: MySQL server has gone away"), true},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"duplicate entry", errors.New("Error 1062: Duplicate entry"), false},
		{"bad sql", errors.New("Error 1064: You have an error in your SQL syntax"), false},
		{"timeout is not connection loss", errors.New("i/o timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsConnectionLost(tt.err))
		})
	}
}

type explicitErr struct{ retry bool }

func (e explicitErr) Error() string     { return "explicit" }
func (e explicitErr) IsRetryable() bool { return e.retry }

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(driver.ErrBadConn))
	assert.True(t, IsRetryable(errors.New("Error 1213: Deadlock found when trying to get lock")))
	assert.True(t, IsRetryable(errors.New("dial tcp: i/o timeout")))
	assert.False(t, IsRetryable(errors.New("Error 1146: Table 'mwnf3.nope' doesn't exist")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", explicitErr{retry: true})))
	assert.False(t, IsRetryable(explicitErr{retry: false}))
}
