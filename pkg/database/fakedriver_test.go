package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// scriptedBackend answers statements from a script shared by every connection.
type scriptedBackend struct {
	mu sync.Mutex

	// execErrs is consumed one per ExecContext; the last entry repeats.
	execErrs   []error
	execCalls  int
	queryCalls int

	// values are single-column rows returned by QueryContext.
	values []any
}

func (b *scriptedBackend) nextExecErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.execCalls++
	if len(b.execErrs) == 0 {
		return nil
	}
	err := b.execErrs[0]
	if len(b.execErrs) > 1 {
		b.execErrs = b.execErrs[1:]
	}
	return err
}

func (b *scriptedBackend) open() *sql.DB {
	return sql.OpenDB(&scriptedConnector{backend: b})
}

type scriptedConnector struct {
	backend *scriptedBackend
}

func (c *scriptedConnector) Connect(context.Context) (driver.Conn, error) {
	return &scriptedConn{backend: c.backend}, nil
}

func (c *scriptedConnector) Driver() driver.Driver { return scriptedDriver{} }

type scriptedDriver struct{}

func (scriptedDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use the connector")
}

type scriptedConn struct {
	backend *scriptedBackend
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *scriptedConn) Close() error              { return nil }
func (c *scriptedConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (c *scriptedConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	if err := c.backend.nextExecErr(); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (c *scriptedConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()
	c.backend.queryCalls++
	values := append([]any(nil), c.backend.values...)
	return &scriptedRows{values: values}, nil
}

type scriptedRows struct {
	values []any
	pos    int
}

func (r *scriptedRows) Columns() []string { return []string{"value"} }
func (r *scriptedRows) Close() error      { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	dest[0] = r.values[r.pos]
	r.pos++
	return nil
}
