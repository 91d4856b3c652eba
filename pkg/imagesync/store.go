package imagesync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
)

// Tables lists the image tables in synchronization order.
var Tables = []string{
	strategy.TableItemImages,
	strategy.TablePartnerImages,
	strategy.TableCollectionImages,
	strategy.TablePartnerLogos,
}

// Placeholder is an image row whose file has not been synchronized.
type Placeholder struct {
	ID   string
	Path string
}

// Store reads and updates image rows.
type Store interface {
	Placeholders(ctx context.Context, table string) ([]Placeholder, error)
	Update(ctx context.Context, table, id, path string, size int64, originalName string) error
}

// Conn is the part of database.ResilientConn the store uses.
type Conn interface {
	Execute(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRows(ctx context.Context, read func(*sql.Rows) error, query string, args ...any) error
}

// SQLStore implements Store on the target database.
type SQLStore struct {
	conn    Conn
	dialect datasource.Dialect
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(conn Conn, dialect datasource.Dialect) *SQLStore {
	return &SQLStore{conn: conn, dialect: dialect}
}

func (s *SQLStore) Placeholders(ctx context.Context, table string) ([]Placeholder, error) {
	query := s.dialect.Rebind("SELECT id, path FROM " + table + " WHERE size = ? ORDER BY id")
	var out []Placeholder
	err := s.conn.QueryRows(ctx, func(rows *sql.Rows) error {
		out = out[:0]
		for rows.Next() {
			var p Placeholder
			if err := rows.Scan(&p.ID, &p.Path); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	}, query, models.PlaceholderImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read placeholders of %s: %w", table, err)
	}
	return out, nil
}

func (s *SQLStore) Update(ctx context.Context, table, id, path string, size int64, originalName string) error {
	query := s.dialect.Rebind("UPDATE " + table + " SET path = ?, size = ?, original_name = ?, updated_at = ? WHERE id = ?")
	if _, err := s.conn.Execute(ctx, query, path, size, originalName, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", table, id, err)
	}
	return nil
}
