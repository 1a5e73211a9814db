// database/connection.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
	_ "modernc.org/sqlite"             // pure-Go SQLite driver, registers "sqlite"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/logging"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// ErrNotInitialized is returned by every store function when InitDB has not
// succeeded.
var ErrNotInitialized = errors.New("database connection is not initialized")

var (
	DB     *sql.DB
	driver string
)

// Enabled reports whether a database has been configured and opened.
func Enabled() bool {
	return DB != nil
}

// InitDB initializes the database connection pool for cfg.Driver and creates
// the schema if needed.
func InitDB(cfg config.DatabaseConfig) error {
	drv := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var dsn string
	switch drv {
	case DriverMySQL:
		// DSN: username:password@protocol(address)/dbname?param=value
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		)
	case DriverSQLite:
		dsn = cfg.Path
		if dsn == "" {
			dsn = ":memory:"
		}
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return fmt.Errorf("failed to create directory for sqlite database: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported database driver %q (expected %q or %q)", cfg.Driver, DriverMySQL, DriverSQLite)
	}

	db, err := sql.Open(drv, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool settings
	if drv == DriverSQLite {
		// One connection: SQLite serializes writers, and an in-memory
		// database lives only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Ping the database to verify connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB, driver = db, drv
	if err := EnsureSchema(); err != nil {
		CloseDB()
		return err
	}

	logging.L().Infof("Database: connected (%s)", drv)
	return nil
}

// CloseDB closes the database connection pool.
// Typically called on application shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		DB, driver = nil, ""
		logging.L().Info("Database: connection closed")
	}
}

// Ping checks the connection. It returns ErrNotInitialized when no database
// is configured.
func Ping() error {
	if DB == nil {
		return ErrNotInitialized
	}
	return DB.Ping()
}
