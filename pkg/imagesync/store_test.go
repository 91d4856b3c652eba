package imagesync

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource/mysql"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
)

var errConnectionLost = errors.New("connection lost")

// placeholderBackend serves (id, path) rows. The first query breaks off
// after dropAfter rows when dropAfter is positive.
type placeholderBackend struct {
	rows      [][2]string
	dropAfter int
	queries   int
}

func (b *placeholderBackend) Connect(context.Context) (driver.Conn, error) {
	return &placeholderConn{backend: b}, nil
}

func (b *placeholderBackend) Driver() driver.Driver { return placeholderDriver{} }

type placeholderDriver struct{}

func (placeholderDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use the connector")
}

type placeholderConn struct {
	backend *placeholderBackend
}

func (c *placeholderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *placeholderConn) Close() error              { return nil }
func (c *placeholderConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (c *placeholderConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	c.backend.queries++
	limit := len(c.backend.rows)
	if c.backend.queries == 1 && c.backend.dropAfter > 0 {
		limit = c.backend.dropAfter
	}
	return &placeholderRows{rows: c.backend.rows, limit: limit}, nil
}

type placeholderRows struct {
	rows  [][2]string
	limit int
	pos   int
}

func (r *placeholderRows) Columns() []string { return []string{"id", "path"} }
func (r *placeholderRows) Close() error      { return nil }

func (r *placeholderRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	if r.pos >= r.limit {
		return errConnectionLost
	}
	dest[0], dest[1] = r.rows[r.pos][0], r.rows[r.pos][1]
	r.pos++
	return nil
}

// retryingConn calls read once per attempt and retries lost connections, like
// database.ResilientConn does.
type retryingConn struct {
	db       *sql.DB
	attempts int
}

func (c *retryingConn) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

func (c *retryingConn) QueryRows(ctx context.Context, read func(*sql.Rows) error, query string, args ...any) error {
	for {
		c.attempts++
		rows, err := c.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		err = read(rows)
		_ = rows.Close()
		if errors.Is(err, errConnectionLost) && c.attempts < 3 {
			continue
		}
		return err
	}
}

func newRetryingStore(t *testing.T, backend *placeholderBackend) (*SQLStore, *retryingConn) {
	t.Helper()
	db := sql.OpenDB(backend)
	t.Cleanup(func() { _ = db.Close() })
	conn := &retryingConn{db: db}
	dialect := mysql.NewDialect(&mysql.Config{Host: "localhost", Port: 3306, User: "root", Database: "inventory"})
	return NewSQLStore(conn, dialect), conn
}

func TestSQLStore_Placeholders(t *testing.T) {
	store, conn := newRetryingStore(t, &placeholderBackend{rows: [][2]string{
		{"img-1", "objects/1.jpg"},
		{"img-2", "objects/2.jpg"},
	}})

	got, err := store.Placeholders(context.Background(), strategy.TableItemImages)

	require.NoError(t, err)
	assert.Equal(t, 1, conn.attempts)
	assert.Equal(t, []Placeholder{{ID: "img-1", Path: "objects/1.jpg"}, {ID: "img-2", Path: "objects/2.jpg"}}, got)
}

func TestSQLStore_PlaceholdersRetryStartsOver(t *testing.T) {
	backend := &placeholderBackend{
		rows: [][2]string{
			{"img-1", "objects/1.jpg"},
			{"img-2", "objects/2.jpg"},
			{"img-3", "objects/3.jpg"},
		},
		dropAfter: 2,
	}
	store, conn := newRetryingStore(t, backend)

	got, err := store.Placeholders(context.Background(), strategy.TablePartnerLogos)

	require.NoError(t, err)
	assert.Equal(t, 2, conn.attempts)
	assert.Equal(t, []Placeholder{
		{ID: "img-1", Path: "objects/1.jpg"},
		{ID: "img-2", Path: "objects/2.jpg"},
		{ID: "img-3", Path: "objects/3.jpg"},
	}, got)
}
