package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read when present in the working directory.
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for heritage-importer.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Passwords must only come from environment variables.
type Config struct {
	Version string `yaml:"-"` // Set at load time, not from config

	// Legacy database (MySQL, read-only)
	Legacy LegacyDBConfig `yaml:"legacy"`

	// Target database
	Target TargetDBConfig `yaml:"target"`

	// Image storage
	Images ImagesConfig `yaml:"images"`

	// Import run behaviour
	Import ImportConfig `yaml:"import"`
}

// LegacyDBConfig holds the legacy MySQL connection settings.
type LegacyDBConfig struct {
	Host     string `yaml:"host" env:"LEGACY_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"LEGACY_DB_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"LEGACY_DB_USER" env-default:"root"`
	Password string `yaml:"-" env:"LEGACY_DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"LEGACY_DB_DATABASE" env-default:"mwnf3"`
}

// TargetDBConfig holds the target database connection settings.
// Driver selects a registered dialect: "mysql", "postgres" or "sqlserver".
type TargetDBConfig struct {
	Driver   string `yaml:"driver" env:"DB_CONNECTION" env-default:"mysql"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Username string `yaml:"username" env:"DB_USERNAME" env-default:"root"`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DB_DATABASE" env-default:"inventory"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
}

// ImagesConfig holds paths used by the image-sync tool.
type ImagesConfig struct {
	// LegacyRoot is the directory holding the legacy image tree.
	LegacyRoot string `yaml:"legacy_root" env:"LEGACY_IMAGES_ROOT" env-default:""`
	// Dir is the destination directory for synchronized images.
	Dir string `yaml:"dir" env:"IMAGES_DIR" env-default:"storage/app/images"`
}

// ImportConfig holds settings for import runs.
type ImportConfig struct {
	LogDir        string        `yaml:"log_dir" env:"IMPORT_LOG_DIR" env-default:"logs"`
	RetryAttempts int           `yaml:"retry_attempts" env:"IMPORT_RETRY_ATTEMPTS" env-default:"5"`
	RetryDelay    time.Duration `yaml:"retry_delay" env:"IMPORT_RETRY_DELAY" env-default:"2s"`
}

// Load reads configuration from config.yaml (when present) with environment variable overrides.
// Without a config file, environment variables and defaults are used.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultConfigFile, version)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Legacy.Port <= 0 || c.Legacy.Port > 65535 {
		return fmt.Errorf("legacy port out of range: %d", c.Legacy.Port)
	}
	if c.Target.Port <= 0 || c.Target.Port > 65535 {
		return fmt.Errorf("target port out of range: %d", c.Target.Port)
	}
	if c.Import.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", c.Import.RetryAttempts)
	}
	if c.Import.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative")
	}
	return nil
}

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// ResolveHost maps localhost to host.docker.internal when the importer runs inside
// a container, so databases published on the host stay reachable.
func ResolveHost(host string) string {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	if !isDockerResult {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}

// DialectConfig returns the settings map consumed by the registered target
// dialect factories.
func (c TargetDBConfig) DialectConfig() map[string]any {
	return map[string]any{
		"host":     ResolveHost(c.Host),
		"port":     c.Port,
		"user":     c.Username,
		"password": c.Password,
		"database": c.Database,
		"ssl_mode": c.SSLMode,
	}
}
