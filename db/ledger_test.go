package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtuoso-tools/virtload/db"
	internaltesting "github.com/virtuoso-tools/virtload/internal/testing"
)

func TestConnectMigrates(t *testing.T) {
	conn := internaltesting.CreateTestDB(t)

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Positive(t, n)

	// Migrations are idempotent across reconnects
	require.NoError(t, db.Migrate(conn))
}

func TestConnectCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	conn, err := db.Connect(path)
	require.NoError(t, err)
	defer conn.Close()
}

func TestSessionLifecycle(t *testing.T) {
	ledger := internaltesting.CreateTestLedger(t)

	rec := db.SessionRecord{
		ID:        "s-1",
		Directory: "/data/dump",
		Pattern:   "*.nq",
		Mode:      "parallel",
		Workers:   3,
		Phase:     "dispatching",
	}
	require.NoError(t, ledger.CreateSession(rec, []string{"/data/dump/a.nq", "/data/dump/b.nq"}))

	counts, err := ledger.CountByState("s-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pending": 2}, counts)

	require.NoError(t, ledger.MarkItem("s-1", "/data/dump/a.nq", "loaded", 0, ""))
	require.NoError(t, ledger.MarkItem("s-1", "/data/dump/b.nq", "failed", 1, "parse error at line 4"))

	counts, err = ledger.CountByState("s-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"loaded": 1, "failed": 1}, counts)

	failed, err := ledger.ItemsByState("s-1", "failed", 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "/data/dump/b.nq", failed[0].Path)
	assert.Equal(t, "parse error at line 4", failed[0].Error)
	require.NotNil(t, failed[0].Worker)
	assert.Equal(t, 1, *failed[0].Worker)

	require.NoError(t, ledger.UpdatePhase("s-1", "checkpointing"))
	require.NoError(t, ledger.FinishSession("s-1", "done", 1, 1, ""))

	got, err := ledger.GetSession("s-1")
	require.NoError(t, err)
	assert.Equal(t, "done", got.Phase)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.NotNil(t, got.FinishedAt)
}

func TestClearPriorRemovesSameDirectoryOnly(t *testing.T) {
	ledger := internaltesting.CreateTestLedger(t)

	require.NoError(t, ledger.CreateSession(db.SessionRecord{
		ID: "old", Directory: "/data/dump", Pattern: "*.nq", Mode: "parallel", Workers: 1, Phase: "done",
	}, []string{"/data/dump/a.nq"}))
	require.NoError(t, ledger.CreateSession(db.SessionRecord{
		ID: "other", Directory: "/data/other", Pattern: "*.nq", Mode: "parallel", Workers: 1, Phase: "done",
	}, nil))

	require.NoError(t, ledger.ClearPrior("/data/dump"))

	_, err := ledger.GetSession("old")
	assert.Error(t, err)

	// Cascade removed the old session's items too
	counts, err := ledger.CountByState("old")
	require.NoError(t, err)
	assert.Empty(t, counts)

	kept, err := ledger.GetSession("other")
	require.NoError(t, err)
	assert.Equal(t, "/data/other", kept.Directory)
}

func TestLatestSession(t *testing.T) {
	ledger := internaltesting.CreateTestLedger(t)

	latest, err := ledger.LatestSession()
	require.NoError(t, err)
	assert.Nil(t, latest, "empty ledger has no latest session")

	require.NoError(t, ledger.CreateSession(db.SessionRecord{
		ID: "a", Directory: "/d", Pattern: "*.nq", Mode: "parallel", Workers: 1, Phase: "done",
	}, nil))
	require.NoError(t, ledger.CreateSession(db.SessionRecord{
		ID: "b", Directory: "/d", Pattern: "*.nq", Mode: "bulk", Workers: 2, Phase: "dispatching",
	}, nil))

	latest, err = ledger.LatestSession()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "b", latest.ID)
}
