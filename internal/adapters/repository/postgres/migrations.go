package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ApplyMigrations runs every migration file whose name ends in name.sql, in
// file order. Down migrations run in reverse. "up" and "down" therefore apply
// the whole set, while "000002_create_poll_results.up" applies a single file.
func ApplyMigrations(ctx context.Context, db *sql.DB, name string) ([]string, error) {
	files, err := migrationFileNames(name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, "down") {
		slices.Reverse(files)
	}

	for _, file := range files {
		content, err := migrationFiles.ReadFile("migrations/" + file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}

	return files, nil
}

func migrationFileNames(name string) ([]string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(name)))
	if err != nil {
		return nil, fmt.Errorf("invalid migration name: %w", err)
	}

	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !regex.MatchString(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("migration file not found")
	}

	return files, nil
}
