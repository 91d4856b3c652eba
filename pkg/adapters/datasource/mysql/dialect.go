// Package mysql is the MySQL / MariaDB target dialect. The legacy reader
// shares its DSN builder.
package mysql

import (
	"errors"
	"net"
	"strconv"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/retry"
)

// MySQL server error numbers.
const (
	erDupEntry         = 1062
	erServerShutdown   = 1053
	erConnectionKilled = 1927
)

// Dialect implements datasource.Dialect for MySQL.
type Dialect struct {
	cfg *Config
}

var _ datasource.Dialect = (*Dialect)(nil)

// NewDialect creates a MySQL dialect.
func NewDialect(cfg *Config) *Dialect {
	return &Dialect{cfg: cfg}
}

// BuildDSN renders cfg as a go-sql-driver DSN with bound parameters only:
// no multi statements, no client side interpolation and no time parsing.
func BuildDSN(cfg *Config) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(config.ResolveHost(cfg.Host), strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.MultiStatements = false
	mc.InterpolateParams = false
	mc.ParseTime = false
	charset := cfg.Charset
	if charset == "" {
		charset = DefaultCharset()
	}
	mc.Params = map[string]string{"charset": charset}
	return mc.FormatDSN()
}

func (d *Dialect) Type() string       { return "mysql" }
func (d *Dialect) DriverName() string { return "mysql" }
func (d *Dialect) DSN() string        { return BuildDSN(d.cfg) }

// Rebind is the identity; MySQL uses ? natively.
func (d *Dialect) Rebind(query string) string {
	return query
}

func (d *Dialect) Insert(table string, columns []string) string {
	return datasource.InsertStatement("INSERT", table, columns)
}

func (d *Dialect) InsertIgnore(table string, columns []string) string {
	return datasource.InsertStatement("INSERT IGNORE", table, columns)
}

// IsDuplicate reports ER_DUP_ENTRY.
func (d *Dialect) IsDuplicate(err error) bool {
	var me *mysqldriver.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}

// IsConnectionLost reports driver-level disconnects and server-side kills.
func (d *Dialect) IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mysqldriver.ErrInvalidConn) {
		return true
	}
	var me *mysqldriver.MySQLError
	if errors.As(err, &me) {
		return me.Number == erServerShutdown || me.Number == erConnectionKilled
	}
	return retry.IsConnectionLost(err)
}
