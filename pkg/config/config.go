package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yi-nology/stl_backend/pkg/storage"

	"gopkg.in/yaml.v3"
)

// Config captures service level configuration loaded from config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  storage.Config `yaml:"storage"`
	Revision RevisionConfig `yaml:"revision"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// RedisConfig defines Redis connection settings for lineage locking.
type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Address     string        `yaml:"address"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	LockPrefix  string        `yaml:"lock_prefix"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// CORSConfig defines CORS middleware settings.
type CORSConfig struct {
	AllowOrigin      string `yaml:"allow_origin"`
	AllowMethods     string `yaml:"allow_methods"`
	AllowHeaders     string `yaml:"allow_headers"`
	AllowCredentials bool   `yaml:"allow_credentials"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address string `yaml:"address"`
	// RequireUser rejects writes that carry no X-User-Id or X-User-Name header.
	RequireUser bool `yaml:"require_user"`
}

// DatabaseConfig defines the database backend configuration.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	// Isolation applies to revision transactions only. Empty keeps the driver default.
	Isolation string `yaml:"isolation"`
}

// SQLiteConfig contains SQLite specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MySQLConfig contains MySQL specific connection details.
type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// PostgresConfig contains PostgreSQL specific connection details.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RevisionConfig holds the plant revision policy.
type RevisionConfig struct {
	// InitialStatus is the status of revision 1 of a new lineage: ACTIVE or DRAFT.
	InitialStatus string `yaml:"initial_status"`
}

// LogConfig configures the zap domain logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Service string `yaml:"service"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a YAML configuration file from the provided path.
// It searches in the current working directory first, then next to the binary executable.
func Load(name string) (*Config, error) {
	cfg := defaultConfig()

	configPath := findConfigFile(name)
	if configPath == "" {
		log.Printf("Warning: config file %q not found, using defaults", name)
		return cfg, nil
	}

	log.Printf("Loading config from: %s", configPath)
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var parsed Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&parsed)
	if err := parsed.Validate(); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// MustLoad is Load for command line tools that cannot continue without config.
func MustLoad(name string) *Config {
	cfg, err := Load(name)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

// Validate rejects settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Revision.InitialStatus) {
	case "ACTIVE", "DRAFT":
	default:
		return fmt.Errorf("revision.initial_status must be ACTIVE or DRAFT, got %q", c.Revision.InitialStatus)
	}
	switch strings.ToLower(c.Database.Isolation) {
	case "", "serializable", "repeatable_read", "read_committed":
	default:
		return fmt.Errorf("unsupported database.isolation: %s", c.Database.Isolation)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "data/stl.db",
			},
		},
		CORS: CORSConfig{
			AllowOrigin:      "*",
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "*",
			AllowCredentials: false,
		},
		Redis: RedisConfig{
			LockPrefix:  "stl:lineage:",
			LockTTL:     30 * time.Second,
			LockTimeout: 5 * time.Second,
		},
		Storage: storage.DefaultConfig(),
		Revision: RevisionConfig{
			InitialStatus: "ACTIVE",
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "json",
			Service: "stl-backend",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = def.Database.Driver
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = def.Database.SQLite.Path
	}
	if cfg.Redis.LockPrefix == "" {
		cfg.Redis.LockPrefix = def.Redis.LockPrefix
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = def.Redis.LockTTL
	}
	if cfg.Redis.LockTimeout <= 0 {
		cfg.Redis.LockTimeout = def.Redis.LockTimeout
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = def.Storage.Type
	}
	if cfg.Storage.Local.BasePath == "" {
		cfg.Storage.Local.BasePath = def.Storage.Local.BasePath
	}
	if cfg.Revision.InitialStatus == "" {
		cfg.Revision.InitialStatus = def.Revision.InitialStatus
	}
	cfg.Revision.InitialStatus = strings.ToUpper(cfg.Revision.InitialStatus)
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Log.Service == "" {
		cfg.Log.Service = def.Log.Service
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = def.Metrics.Path
	}
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	// 1. Current working directory
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	// 2. Next to the binary executable
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		candidate := filepath.Join(exeDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
