// Package postgres is the PostgreSQL target dialect, opened through the pgx
// database/sql driver.
package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/retry"
)

const (
	uniqueViolation     = "23505"
	adminShutdown       = "57P01"
	connectionException = "08" // SQLSTATE class
)

// Dialect implements datasource.Dialect for PostgreSQL.
type Dialect struct {
	cfg *Config
}

var _ datasource.Dialect = (*Dialect)(nil)

// NewDialect creates a PostgreSQL dialect.
func NewDialect(cfg *Config) *Dialect {
	return &Dialect{cfg: cfg}
}

func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	// Resolve localhost to host.docker.internal when running in Docker
	host := config.ResolveHost(cfg.Host)

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		sslMode,
	)
}

func (d *Dialect) Type() string       { return "postgres" }
func (d *Dialect) DriverName() string { return "pgx" }
func (d *Dialect) DSN() string        { return buildConnectionString(d.cfg) }

// Rebind rewrites ? into $1, $2, ...
func (d *Dialect) Rebind(query string) string {
	return datasource.Rebind(query, datasource.DollarPlaceholder)
}

func (d *Dialect) Insert(table string, columns []string) string {
	return d.Rebind(datasource.InsertStatement("INSERT", table, columns))
}

func (d *Dialect) InsertIgnore(table string, columns []string) string {
	return d.Insert(table, columns) + " ON CONFLICT DO NOTHING"
}

// IsDuplicate reports SQLSTATE 23505.
func (d *Dialect) IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsConnectionLost reports SQLSTATE class 08, admin shutdown and transport failures.
func (d *Dialect) IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, connectionException) || pgErr.Code == adminShutdown
	}
	return pgconn.SafeToRetry(err) || retry.IsConnectionLost(err)
}
