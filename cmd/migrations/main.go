package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/enquesta/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/enquesta/internal/config"
)

// Usage: migrations [flags] <name>
//
// name selects migration files by suffix: "up" and "down" apply the whole
// set, "000002_create_poll_results.up" a single file.
func main() {
	cfg, err := config.Load("migrations", os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if len(cfg.Args) == 0 {
		slog.Error("a migration name is required")
		os.Exit(1)
	}
	migrationName := cfg.Args[0]

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := postgres.ApplyMigrations(context.Background(), db, migrationName)
	if err != nil {
		slog.Error("migration failed", "name", migrationName, "error", err)
		os.Exit(1)
	}

	slog.Info("migration files executed successfully", "files", applied)
}
