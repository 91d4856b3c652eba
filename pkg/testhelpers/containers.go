package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource/mysql"
	"github.com/ekaya-inc/heritage-importer/pkg/database"
)

// TargetTestImage is the MySQL image hosting the inventory schema.
const TargetTestImage = "mysql:8.0"

const (
	targetDatabase = "inventory"
	targetPassword = "test_password"
)

// TargetDB is a shared MySQL container with the inventory schema migrated.
type TargetDB struct {
	Container testcontainers.Container
	DB        *sql.DB
	Config    *mysql.Config
	Dialect   *mysql.Dialect
}

var (
	sharedTargetDB     *TargetDB
	sharedTargetDBOnce sync.Once
	sharedTargetDBErr  error
)

// GetTargetDB returns the shared target database for integration tests.
// The container is created once and reused across all tests in the run.
func GetTargetDB(t *testing.T) *TargetDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTargetDBOnce.Do(func() {
		sharedTargetDB, sharedTargetDBErr = setupTargetDB()
	})

	if sharedTargetDBErr != nil {
		t.Fatalf("Failed to setup target database: %v", sharedTargetDBErr)
	}

	return sharedTargetDB
}

func setupTargetDB() (*TargetDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        TargetTestImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": targetPassword,
			"MYSQL_DATABASE":      targetDatabase,
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	cfg := &mysql.Config{
		Host:     host,
		Port:     port.Int(),
		User:     "root",
		Password: targetPassword,
		Database: targetDatabase,
		Charset:  mysql.DefaultCharset(),
	}

	if err := migrate(ctx, cfg); err != nil {
		return nil, err
	}

	dialect := mysql.NewDialect(cfg)
	db, err := database.Open(ctx, dialect, nil, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("failed to open target database: %w", err)
	}

	return &TargetDB{Container: container, DB: db, Config: cfg, Dialect: dialect}, nil
}

// migrate applies the schema over a separate connection that allows multi
// statements. Import connections never do.
func migrate(ctx context.Context, cfg *mysql.Config) error {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.MultiStatements = true

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	// The server keeps restarting for a few seconds after the port opens.
	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("failed to reach test database: %w", err)
	}

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Truncate empties tables between tests sharing the container.
func (t *TargetDB) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := t.DB.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
