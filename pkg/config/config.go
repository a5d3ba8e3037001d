package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for a migration run.
// Values come from a YAML file plus environment variable overrides;
// passwords must only come from the environment.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	Source    SourceConfig    `yaml:"source"`
	Target    TargetConfig    `yaml:"target"`
	Migration MigrationConfig `yaml:"migration"`
}

// SourceConfig describes the relational database to migrate from.
type SourceConfig struct {
	// Type is one of "mysql", "postgres", "sqlserver".
	Type     string `yaml:"type" env:"SOURCE_DB_TYPE" env-default:"postgres"`
	Host     string `yaml:"host" env:"SOURCE_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SOURCE_DB_PORT" env-default:"0"`
	Database string `yaml:"database" env:"SOURCE_DB_NAME"`
	Schema   string `yaml:"schema" env:"SOURCE_DB_SCHEMA" env-default:""`
	User     string `yaml:"user" env:"SOURCE_DB_USER"`
	Password string `yaml:"-" env:"SOURCE_DB_PASSWORD"` // Secret - not in YAML
	SSLMode  string `yaml:"ssl_mode" env:"SOURCE_DB_SSLMODE" env-default:"disable"`
}

// TargetConfig describes the Neo4j instance to migrate into.
type TargetConfig struct {
	URI      string `yaml:"uri" env:"NEO4J_URI" env-default:"neo4j://localhost:7687"`
	Database string `yaml:"database" env:"NEO4J_DATABASE" env-default:"neo4j"`
	User     string `yaml:"user" env:"NEO4J_USER" env-default:"neo4j"`
	Password string `yaml:"-" env:"NEO4J_PASSWORD"` // Secret - not in YAML
}

// MigrationConfig holds tunables for the migration pipeline.
type MigrationConfig struct {
	// BatchSize is the number of rows per extraction and load batch.
	BatchSize int `yaml:"batch_size" env:"MIGRATION_BATCH_SIZE" env-default:"1000"`
	// ClearTarget drops all target nodes and relationships before loading.
	ClearTarget bool `yaml:"clear_target" env:"MIGRATION_CLEAR_TARGET" env-default:"false"`
	// SkipEnrichment bypasses semantic enrichment and maps the raw schema
	// directly onto the graph.
	SkipEnrichment bool `yaml:"skip_enrichment" env:"MIGRATION_SKIP_ENRICHMENT" env-default:"false"`
}

// DefaultPort returns the conventional port for a source database type.
func DefaultPort(dbType string) int {
	switch dbType {
	case "mysql":
		return 3306
	case "sqlserver":
		return 1433
	default:
		return 5432
	}
}

// Load reads configuration from the given YAML file (optional) and the
// environment. Environment variables override file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	}

	if cfg.Source.Port == 0 {
		cfg.Source.Port = DefaultPort(cfg.Source.Type)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Source.Type {
	case "mysql", "postgres", "postgresql", "sqlserver":
	default:
		return fmt.Errorf("unsupported source database type %q", c.Source.Type)
	}
	if c.Source.Database == "" {
		return fmt.Errorf("source database name is required")
	}
	if c.Migration.BatchSize <= 0 {
		return fmt.Errorf("migration batch size must be positive, got %d", c.Migration.BatchSize)
	}
	return nil
}
