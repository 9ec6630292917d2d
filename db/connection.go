// Package db provides the local SQLite ledger recording load sessions and
// per-file outcomes, so past runs survive process exit and can be inspected
// without touching the Virtuoso server.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/virtuoso-tools/virtload/errors"
)

// Connect opens (creating if needed) the ledger database at path and runs
// pending migrations. WAL mode keeps concurrent readers cheap while a load
// session writes progress rows.
func Connect(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create ledger directory %s", dir)
		}
	}

	dsn := path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ledger database %s", path)
	}

	// A single writer at a time; SQLite serializes writes anyway
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "failed to connect to ledger database %s", path)
	}

	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
