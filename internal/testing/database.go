// Package testing provides shared fixtures for package tests
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtuoso-tools/virtload/db"
)

// CreateTestDB opens a fully migrated ledger database in a temp directory.
// The connection is closed automatically when the test finishes.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "virtload-test.db")
	conn, err := db.Connect(path)
	require.NoError(t, err, "failed to create test ledger")

	t.Cleanup(func() { conn.Close() })
	return conn
}

// CreateTestLedger wraps CreateTestDB in a Ledger
func CreateTestLedger(t *testing.T) *db.Ledger {
	t.Helper()
	return db.NewLedger(CreateTestDB(t))
}
