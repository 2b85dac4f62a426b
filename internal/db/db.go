package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/sukalov/hymnarium/internal/config"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

// Open connects to the hymn database: a local SQLite file in development,
// Turso over libsql in production.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	if cfg.Driver == "" || cfg.DSN == "" {
		return nil, e.Mark(e.ErrConfiguration, "database driver and DSN are required", nil)
	}

	database, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, e.Mark(e.ErrConfiguration, fmt.Sprintf("failed to open %s db", cfg.Driver), err)
	}

	if cfg.Driver == "sqlite" {
		// single writer; readers share one file handle
		database.SetMaxOpenConns(1)
	} else {
		database.SetMaxOpenConns(25)
		database.SetMaxIdleConns(25)
		database.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, e.Mark(e.ErrUpstream, "failed to ping database", err)
	}

	logger.Debug("database connected", "driver", cfg.Driver)
	return database, nil
}

// Close closes the database connection safely
func Close(database *sql.DB) {
	if database == nil {
		return
	}
	if err := database.Close(); err != nil {
		logger.Error("error closing database", "error", err.Error())
	}
}
