package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/stridehq/stride/internal/config"
)

// New opens a database connection for the configured driver.
// Supported drivers: "sqlite" (default, CGo-free) and "pgx".
func New(cfg *config.Config) (*sqlx.DB, error) {
	driver := cfg.DBDriver
	dsn := cfg.DBConnection

	if driver == "sqlite" {
		// Ensure the parent directory exists for file-backed databases.
		if path, ok := sqliteFilePath(dsn); ok {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent writers.
		db.SetMaxOpenConns(1)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

func sqliteFilePath(dsn string) (string, bool) {
	if strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return "", false
	}
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		return "", false
	}
	return path, true
}
