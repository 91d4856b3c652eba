package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/config"
	"github.com/ekaya-inc/heritage-importer/pkg/database"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
)

// target is an open connection to the inventory database.
type target struct {
	conn    *database.ResilientConn
	dialect datasource.Dialect
}

func connectTarget(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*target, error) {
	dialect, err := datasource.New(cfg.Target.Driver, cfg.Target.DialectConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to configure target database: %w", err)
	}
	named := logger.Named("target-db")
	conn := database.NewResilientConn(
		database.Dialer(dialect, database.DefaultConfig(), named),
		named,
		database.WithConnectionLost(dialect.IsConnectionLost),
		database.WithRetry(cfg.Import.RetryAttempts, cfg.Import.RetryDelay),
	)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}
	return &target{conn: conn, dialect: dialect}, nil
}

func connectLegacy(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*legacydb.MySQLReader, error) {
	reader := legacydb.NewMySQLReader(cfg.Legacy, logger,
		database.WithRetry(cfg.Import.RetryAttempts, cfg.Import.RetryDelay))
	if err := reader.Connect(ctx); err != nil {
		return nil, err
	}
	return reader, nil
}
