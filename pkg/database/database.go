package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/pkg/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pool struct {
	maxOpen int
	maxIdle int
}

// sqlite allows one writer; a single connection queues revision transactions
// instead of failing them with "database is locked".
var (
	sqlitePool = pool{maxOpen: 1, maxIdle: 1}
	serverPool = pool{maxOpen: 100, maxIdle: 10}
)

// Open connects to the configured database and applies pool limits.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, limits, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(limits.maxOpen)
	sqlDB.SetMaxIdleConns(limits.maxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func dialect(cfg config.DatabaseConfig) (gorm.Dialector, pool, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "sqlite3":
		if cfg.SQLite.Path == "" {
			return nil, pool{}, fmt.Errorf("sqlite path must be configured")
		}
		if err := ensureDir(filepath.Dir(cfg.SQLite.Path)); err != nil {
			return nil, pool{}, err
		}
		// foreign keys stay off; child rows are removed by the DAOs
		return sqlite.Open(cfg.SQLite.Path + "?_busy_timeout=5000"), sqlitePool, nil
	case "mysql":
		if cfg.MySQL.DSN == "" {
			return nil, pool{}, fmt.Errorf("mysql dsn must be configured")
		}
		return mysql.Open(cfg.MySQL.DSN), serverPool, nil
	case "postgres", "postgresql":
		if cfg.Postgres.DSN == "" {
			return nil, pool{}, fmt.Errorf("postgres dsn must be configured")
		}
		return postgres.Open(cfg.Postgres.DSN), serverPool, nil
	default:
		return nil, pool{}, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Migrate creates or updates every table used by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

// IsolationLevel maps the configured isolation name to a sql.IsolationLevel.
// An empty name yields sql.LevelDefault.
func IsolationLevel(name string) (sql.IsolationLevel, error) {
	switch strings.ToLower(name) {
	case "":
		return sql.LevelDefault, nil
	case "serializable":
		return sql.LevelSerializable, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unsupported isolation level: %s", name)
	}
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
