package db

import (
	"database/sql"
	"embed"
	"sort"

	"github.com/virtuoso-tools/virtload/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies embedded schema migrations in filename order. Each file
// is applied at most once, tracked in schema_migrations.
func Migrate(conn *sql.DB) error {
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return errors.Wrap(err, "failed to read embedded migrations")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()

		var applied int
		if err := conn.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", name,
		).Scan(&applied); err != nil {
			return errors.Wrapf(err, "failed to check migration %s", name)
		}
		if applied > 0 {
			continue
		}

		script, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration %s", name)
		}

		tx, err := conn.Begin()
		if err != nil {
			return errors.Wrapf(err, "failed to begin migration %s", name)
		}
		if _, err := tx.Exec(string(script)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to apply migration %s", name)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", name); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to record migration %s", name)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "failed to commit migration %s", name)
		}
	}

	return nil
}
