package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/noneca/meli-sync/configs"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pressly/goose/v3"
)

// checkDSN rejects connection strings the SQLite migration set cannot serve.
// Postgres deployments get their schema from the pipeline's startup
// migration instead.
func checkDSN(dsn string) error {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("migrations target SQLite only, got postgres DSN %q", dsn)
	}
	return nil
}

// Applies the versioned SQL migrations to the default SQLite store. The
// pipeline itself creates missing tables on startup; this binary exists for
// explicit, versioned schema management of long-lived databases.
func main() {
	cfg := configs.AppLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := checkDSN(cfg.DBDSN); err != nil {
		logger.Error("Unsupported database", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite3", cfg.DBDSN)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Verify connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		logger.Error("Goose: failed to set dialect", "error", err)
		os.Exit(1)
	}

	logger.Info("Running database migrations...")
	if err := goose.Up(db, "internal/migrations"); err != nil {
		logger.Error("Goose migration failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Migrations completed successfully")
}
