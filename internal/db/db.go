package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens and pings the database. driver is "sqlite" or "pgx".
func Init(driver, connection string) (*sqlx.DB, error) {
	memory := driver == "sqlite" && isMemoryDSN(connection)

	if driver == "sqlite" && !memory {
		err := ensureDataDir(connection)
		if err != nil {
			return nil, err
		}
	}

	database, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if memory {
		// Every new connection would see its own empty database.
		database.SetMaxOpenConns(1)
		database.SetMaxIdleConns(1)
		database.SetConnMaxLifetime(0)
	} else {
		database.SetMaxOpenConns(25)
		database.SetMaxIdleConns(5)
		database.SetConnMaxLifetime(5 * time.Minute)
	}

	err = database.Ping()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver, "in_memory", memory)
	return database, nil
}

func ensureDataDir(connection string) error {
	path := strings.TrimPrefix(connection, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func isMemoryDSN(connection string) bool {
	return strings.HasPrefix(connection, ":memory:") || strings.Contains(connection, "mode=memory")
}
