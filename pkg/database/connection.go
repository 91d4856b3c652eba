package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/logging"
	"github.com/ekaya-inc/heritage-importer/pkg/retry"
)

// Config holds database pool configuration.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig suits a single sequential import run.
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open opens and pings a pool for the dialect, retrying transient failures.
func Open(ctx context.Context, dialect datasource.Dialect, cfg *Config, logger *zap.Logger) (*sql.DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := dialect.DSN()
	logger.Debug("Opening database",
		zap.String("driver", dialect.DriverName()),
		zap.String("dsn", logging.SanitizeDSN(dsn)))

	retryCfg := retry.ConnectConfig()
	retryCfg.Retryable = retry.IsRetryable
	retryCfg.OnRetry = func(err error, attempt int, wait time.Duration) {
		logger.Warn("Database connection failed, retrying",
			zap.String("driver", dialect.DriverName()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.String("error", logging.SanitizeError(err)))
	}

	return retry.DoWithResult(ctx, retryCfg, func() (*sql.DB, error) {
		db, err := sql.Open(dialect.DriverName(), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s connection: %w", dialect.Type(), err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping %s database: %w", dialect.Type(), err)
		}
		return db, nil
	})
}

// Dialer returns a function that opens the dialect with cfg, for ResilientConn.
func Dialer(dialect datasource.Dialect, cfg *Config, logger *zap.Logger) DialFunc {
	return func(ctx context.Context) (*sql.DB, error) {
		return Open(ctx, dialect, cfg, logger)
	}
}
