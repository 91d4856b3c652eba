package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
)

var errReset = errors.New("read tcp 127.0.0.1:3306: connection reset by peer")

func newTestConn(t *testing.T, backend *scriptedBackend, dials *int32) *ResilientConn {
	t.Helper()
	dial := func(ctx context.Context) (*sql.DB, error) {
		atomic.AddInt32(dials, 1)
		return backend.open(), nil
	}
	return NewResilientConn(dial, zaptest.NewLogger(t), WithRetry(5, time.Millisecond))
}

func TestResilientConn_NotConnected(t *testing.T) {
	var dials int32
	rc := newTestConn(t, &scriptedBackend{}, &dials)

	_, err := rc.Execute(context.Background(), "INSERT INTO tags (id) VALUES (?)", "x")
	assert.ErrorIs(t, err, apperrors.ErrNotConnected)
	assert.Equal(t, StateDisconnected, rc.State())
	assert.Zero(t, atomic.LoadInt32(&dials))
}

func TestResilientConn_ConnectAndClose(t *testing.T) {
	var dials int32
	rc := newTestConn(t, &scriptedBackend{}, &dials)

	require.NoError(t, rc.Connect(context.Background()))
	assert.Equal(t, StateConnected, rc.State())

	require.NoError(t, rc.Connect(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials), "connect is idempotent")

	require.NoError(t, rc.Close())
	assert.Equal(t, StateDisconnected, rc.State())
	assert.Equal(t, "disconnected", rc.State().String())
}

func TestResilientConn_ConnectFailure(t *testing.T) {
	rc := NewResilientConn(func(ctx context.Context) (*sql.DB, error) {
		return nil, errors.New("dial tcp: connection refused")
	}, zaptest.NewLogger(t))

	err := rc.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
	assert.Equal(t, StateDisconnected, rc.State())
}

func TestResilientConn_ExecuteRetriesConnectionLoss(t *testing.T) {
	backend := &scriptedBackend{execErrs: []error{errReset, errReset, nil}}
	var dials int32
	rc := newTestConn(t, backend, &dials)
	require.NoError(t, rc.Connect(context.Background()))

	result, err := rc.Execute(context.Background(), "INSERT INTO items (id) VALUES (?)", "a")
	require.NoError(t, err)
	n, _ := result.RowsAffected()
	assert.Equal(t, int64(1), n)

	assert.Equal(t, 3, backend.execCalls)
	assert.Equal(t, int32(3), atomic.LoadInt32(&dials), "one connect plus one reconnect per lost attempt")
	assert.Equal(t, StateConnected, rc.State())
}

func TestResilientConn_ExecuteDoesNotRetryOtherErrors(t *testing.T) {
	dup := errors.New("Error 1062 (23000): Duplicate entry 'x' for key 'PRIMARY'")
	backend := &scriptedBackend{execErrs: []error{dup}}
	var dials int32
	rc := newTestConn(t, backend, &dials)
	require.NoError(t, rc.Connect(context.Background()))

	_, err := rc.Execute(context.Background(), "INSERT INTO tags (id) VALUES (?)", "x")
	assert.ErrorIs(t, err, dup)
	assert.Equal(t, 1, backend.execCalls)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestResilientConn_ExecuteExhaustsAttempts(t *testing.T) {
	backend := &scriptedBackend{execErrs: []error{errReset}}
	var dials int32
	rc := newTestConn(t, backend, &dials)
	require.NoError(t, rc.Connect(context.Background()))

	_, err := rc.Execute(context.Background(), "INSERT INTO items (id) VALUES (?)", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 5, backend.execCalls)
}

func TestResilientConn_CustomClassifier(t *testing.T) {
	backend := &scriptedBackend{execErrs: []error{errReset}}
	var dials int32
	rc := NewResilientConn(func(ctx context.Context) (*sql.DB, error) {
		atomic.AddInt32(&dials, 1)
		return backend.open(), nil
	}, zaptest.NewLogger(t), WithRetry(5, time.Millisecond), WithConnectionLost(func(error) bool { return false }))
	require.NoError(t, rc.Connect(context.Background()))

	_, err := rc.Execute(context.Background(), "INSERT INTO items (id) VALUES (?)", "a")
	require.Error(t, err)
	assert.Equal(t, 1, backend.execCalls)
}

func TestResilientConn_QueryValue(t *testing.T) {
	backend := &scriptedBackend{values: []any{"0b0c0c4e-6e0c-4d2a-9d6f-1b1e0b7a1f00"}}
	var dials int32
	rc := newTestConn(t, backend, &dials)
	require.NoError(t, rc.Connect(context.Background()))

	var id string
	require.NoError(t, rc.QueryValue(context.Background(), &id, "SELECT id FROM items WHERE backward_compatibility = ?", "k"))
	assert.Equal(t, "0b0c0c4e-6e0c-4d2a-9d6f-1b1e0b7a1f00", id)
}

func TestResilientConn_QueryValueNotFound(t *testing.T) {
	var dials int32
	rc := newTestConn(t, &scriptedBackend{}, &dials)
	require.NoError(t, rc.Connect(context.Background()))

	var id string
	err := rc.QueryValue(context.Background(), &id, "SELECT id FROM items WHERE backward_compatibility = ?", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResilientConn_QueryRows(t *testing.T) {
	backend := &scriptedBackend{values: []any{"a", "b", "c"}}
	var dials int32
	rc := newTestConn(t, backend, &dials)
	require.NoError(t, rc.Connect(context.Background()))

	var got []string
	err := rc.QueryRows(context.Background(), func(rows *sql.Rows) error {
		got = got[:0]
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return err
			}
			got = append(got, v)
		}
		return nil
	}, "SELECT path FROM item_images")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestResilientConn_ReconnectGuard(t *testing.T) {
	backend := &scriptedBackend{}
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	var dials int32

	rc := NewResilientConn(func(ctx context.Context) (*sql.DB, error) {
		if atomic.AddInt32(&dials, 1) > 1 {
			entered <- struct{}{}
			<-release
		}
		return backend.open(), nil
	}, zaptest.NewLogger(t))
	require.NoError(t, rc.Connect(context.Background()))

	var wg sync.WaitGroup
	var first bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = rc.reconnect(context.Background())
	}()

	<-entered
	assert.Equal(t, StateReconnecting, rc.State())
	assert.False(t, rc.reconnect(context.Background()), "a concurrent caller must not dial again")

	close(release)
	wg.Wait()

	assert.True(t, first)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
	assert.Equal(t, StateConnected, rc.State())
}

func TestResilientConn_FailedReconnectIsRetried(t *testing.T) {
	backend := &scriptedBackend{execErrs: []error{errReset, nil}}
	var dials int32
	rc := NewResilientConn(func(ctx context.Context) (*sql.DB, error) {
		if atomic.AddInt32(&dials, 1) == 2 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return backend.open(), nil
	}, zaptest.NewLogger(t), WithRetry(5, time.Millisecond))
	require.NoError(t, rc.Connect(context.Background()))

	_, err := rc.Execute(context.Background(), "INSERT INTO items (id) VALUES (?)", "a")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&dials))
	assert.Equal(t, StateConnected, rc.State())
}
