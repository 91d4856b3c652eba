// Package legacydb reads the legacy MySQL schemas. The import pipeline never
// writes to the legacy side.
package legacydb

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource/mysql"
	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/database"
	"github.com/ekaya-inc/heritage-importer/pkg/logging"
)

// Reader is the legacy database contract. Calls before Connect fail with
// apperrors.ErrNotConnected.
type Reader interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Execute(ctx context.Context, query string, args ...any) error
}

// MySQLReader reads the legacy database through a ResilientConn. Every value
// is sent as a bound parameter; multi statements and client-side
// interpolation are disabled in the DSN.
type MySQLReader struct {
	conn   *database.ResilientConn
	logger *zap.Logger
}

var _ Reader = (*MySQLReader)(nil)

// NewMySQLReader creates a disconnected reader for cfg. opts tune the
// underlying connection, typically its retry policy.
func NewMySQLReader(cfg config.LegacyDBConfig, logger *zap.Logger, opts ...database.ResilientOption) *MySQLReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialect := mysql.NewDialect(&mysql.Config{
		Host:     config.ResolveHost(cfg.Host),
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		Charset:  mysql.DefaultCharset(),
	})
	named := logger.Named("legacy-db")
	return &MySQLReader{
		conn: database.NewResilientConn(
			database.Dialer(dialect, database.DefaultConfig(), named),
			named,
			append([]database.ResilientOption{database.WithConnectionLost(dialect.IsConnectionLost)}, opts...)...,
		),
		logger: named,
	}
}

// NewReaderWithConn wraps an existing connection. Used by integration tests.
func NewReaderWithConn(conn *database.ResilientConn, logger *zap.Logger) *MySQLReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLReader{conn: conn, logger: logger.Named("legacy-db")}
}

func (r *MySQLReader) Connect(ctx context.Context) error {
	if err := r.conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to legacy database: %w", err)
	}
	r.logger.Info("Connected to legacy database")
	return nil
}

func (r *MySQLReader) Disconnect() error {
	return r.conn.Close()
}

// Query returns every row of the result set.
func (r *MySQLReader) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	var result []Row
	err := r.conn.QueryRows(ctx, func(rows *sql.Rows) error {
		result = result[:0]
		columns, err := rows.Columns()
		if err != nil {
			return err
		}
		for rows.Next() {
			values := make([]any, len(columns))
			ptrs := make([]any, len(columns))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			result = append(result, NewRow(columns, values))
		}
		return nil
	}, query, args...)
	if err != nil {
		r.logger.Debug("Legacy query failed",
			zap.String("query", logging.SanitizeQuery(query)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return result, nil
}

func (r *MySQLReader) Execute(ctx context.Context, query string, args ...any) error {
	_, err := r.conn.Execute(ctx, query, args...)
	return err
}
