// Package mssql is the Microsoft SQL Server target dialect.
package mssql

import (
	"errors"
	"fmt"
	"net/url"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/retry"
)

// SQL Server error numbers for unique constraint and unique index violations.
const (
	errUniqueConstraint = 2627
	errUniqueIndex      = 2601
)

// Dialect implements datasource.Dialect for SQL Server.
type Dialect struct {
	cfg *Config
}

var _ datasource.Dialect = (*Dialect)(nil)

// NewDialect creates a SQL Server dialect.
func NewDialect(cfg *Config) *Dialect {
	return &Dialect{cfg: cfg}
}

func buildConnectionString(cfg *Config) string {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}

	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		config.ResolveHost(cfg.Host),
		cfg.Port,
		query.Encode(),
	)
}

func (d *Dialect) Type() string       { return "sqlserver" }
func (d *Dialect) DriverName() string { return "sqlserver" }
func (d *Dialect) DSN() string        { return buildConnectionString(d.cfg) }

// Rebind rewrites ? into @p1, @p2, ...
func (d *Dialect) Rebind(query string) string {
	return datasource.Rebind(query, datasource.AtPPlaceholder)
}

func (d *Dialect) Insert(table string, columns []string) string {
	return d.Rebind(datasource.InsertStatement("INSERT", table, columns))
}

// InsertIgnore is a plain INSERT; SQL Server has no ignore clause, so the
// caller's IsDuplicate check absorbs existing pivot rows.
func (d *Dialect) InsertIgnore(table string, columns []string) string {
	return d.Insert(table, columns)
}

// IsDuplicate reports errors 2627 and 2601.
func (d *Dialect) IsDuplicate(err error) bool {
	var me mssqldb.Error
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == errUniqueConstraint || me.Number == errUniqueIndex
}

func (d *Dialect) IsConnectionLost(err error) bool {
	return retry.IsConnectionLost(err)
}
