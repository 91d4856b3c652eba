package mysql

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
)

func testConfig() *Config {
	return &Config{Host: "db.internal", Port: 3307, User: "importer", Password: "s3cret", Database: "inventory"}
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"host":     "db.internal",
		"port":     3307,
		"user":     "importer",
		"password": "s3cret",
		"database": "inventory",
	})
	require.NoError(t, err)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "utf8mb4", cfg.Charset)

	cfg, err = FromMap(map[string]any{"host": "h", "port": float64(3310), "user": "u", "database": "d"})
	require.NoError(t, err)
	assert.Equal(t, 3310, cfg.Port)
}

func TestFromMap_RequiredFields(t *testing.T) {
	_, err := FromMap(map[string]any{"user": "u", "database": "d"})
	assert.EqualError(t, err, "host is required")

	_, err = FromMap(map[string]any{"host": "h", "database": "d"})
	assert.EqualError(t, err, "user is required")

	_, err = FromMap(map[string]any{"host": "h", "user": "u"})
	assert.EqualError(t, err, "database is required")
}

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(testConfig())

	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "importer", parsed.User)
	assert.Equal(t, "s3cret", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.True(t, strings.HasSuffix(parsed.Addr, ":3307"))
	assert.Equal(t, "inventory", parsed.DBName)
	assert.False(t, parsed.MultiStatements)
	assert.False(t, parsed.InterpolateParams)
	assert.False(t, parsed.ParseTime)
}

func TestDialect_Statements(t *testing.T) {
	d := NewDialect(testConfig())
	cols := []string{"item_id", "tag_id"}

	assert.Equal(t, "mysql", d.DriverName())
	assert.Equal(t, "INSERT INTO item_tag (item_id, tag_id) VALUES (?, ?)", d.Insert("item_tag", cols))
	assert.Equal(t, "INSERT IGNORE INTO item_tag (item_id, tag_id) VALUES (?, ?)", d.InsertIgnore("item_tag", cols))
	assert.Equal(t, "SELECT id FROM tags WHERE backward_compatibility = ?", d.Rebind("SELECT id FROM tags WHERE backward_compatibility = ?"))
}

func TestDialect_IsDuplicate(t *testing.T) {
	d := NewDialect(testConfig())

	dup := &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'tags.backward_compatibility'"}
	assert.True(t, d.IsDuplicate(dup))
	assert.True(t, d.IsDuplicate(fmt.Errorf("insert tag: %w", dup)))
	assert.False(t, d.IsDuplicate(&mysqldriver.MySQLError{Number: 1452}))
	assert.False(t, d.IsDuplicate(errors.New("Duplicate entry")))
	assert.False(t, d.IsDuplicate(nil))
}

func TestDialect_IsConnectionLost(t *testing.T) {
	d := NewDialect(testConfig())

	assert.True(t, d.IsConnectionLost(mysqldriver.ErrInvalidConn))
	assert.True(t, d.IsConnectionLost(fmt.Errorf("exec: %w", driver.ErrBadConn)))
	assert.True(t, d.IsConnectionLost(&mysqldriver.MySQLError{Number: 1927, Message: "Connection was killed"}))
	assert.False(t, d.IsConnectionLost(&mysqldriver.MySQLError{Number: 1062}))
	assert.False(t, d.IsConnectionLost(nil))
}

func TestRegistered(t *testing.T) {
	require.True(t, datasource.IsRegistered("mysql"))

	d, err := datasource.New("mysql", map[string]any{"host": "h", "user": "u", "database": "d"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Type())
}
