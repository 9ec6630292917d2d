package load

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtuoso-tools/virtload/errors"
	internaltesting "github.com/virtuoso-tools/virtload/internal/testing"
)

const bulkStatsStdout = "12  10  2\n\n1 Rows. -- 2 msec.\n"

const bulkFailuresStdout = `/data/dump/part-007.nq  *** Error 37000: SP029: parse error
/data/dump/part-009.nq  NULL

2 Rows. -- 1 msec.
`

func TestBulkLoad(t *testing.T) {
	ledger := internaltesting.CreateTestLedger(t)
	runner := &fakeRunner{
		statsStdout:    bulkStatsStdout,
		failuresStdout: bulkFailuresStdout,
	}

	loader := &BulkLoader{
		Config:     testLoadConfig(3),
		Runner:     runner,
		Discoverer: fixedDiscoverer(tenFiles()),
		Ledger:     ledger,
	}

	outcome, err := loader.Run(context.Background(), "/data/dump")
	require.NoError(t, err)

	assert.Equal(t, 12, outcome.Total)
	assert.Equal(t, 10, outcome.Succeeded)
	assert.Equal(t, 2, outcome.Failed)
	assert.Equal(t, PhaseDone, outcome.Phase)
	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, "/data/dump/part-007.nq", outcome.Failures[0].File)

	// Access probed once, prior registrations cleared, directory registered
	// once, one loader process per worker, checkpoint after the drain
	assert.Len(t, runner.callsMatching("file_stat"), 1)
	assert.Len(t, runner.callsMatching("DELETE FROM DB.DBA.load_list"), 1)
	assert.Len(t, runner.callsMatching("ld_dir("), 1)
	assert.Len(t, runner.callsMatching("rdf_loader_run"), 3)
	assert.Len(t, runner.callsMatching("checkpoint;"), 1)

	rec, lerr := ledger.GetSession(outcome.SessionID)
	require.NoError(t, lerr)
	assert.Equal(t, "done", rec.Phase)
	assert.Equal(t, "bulk", rec.Mode)
}

func TestBulkLoadRecursiveUsesLdDirAll(t *testing.T) {
	runner := &fakeRunner{statsStdout: "1  1  0\n"}
	cfg := testLoadConfig(1)
	cfg.Load.Recursive = true

	loader := &BulkLoader{Config: cfg, Runner: runner, Discoverer: fixedDiscoverer(tenFiles())}
	_, err := loader.Run(context.Background(), "/data/dump")
	require.NoError(t, err)

	assert.Len(t, runner.callsMatching("ld_dir_all("), 1)
	assert.Empty(t, runner.callsMatching("ld_dir('"))
}

func TestBulkRegistrationFailure(t *testing.T) {
	runner := &fakeRunner{
		ldDirStderr: "*** Error 42000: FA020: Unable to list files in /data/dump",
	}
	loader := &BulkLoader{Config: testLoadConfig(2), Runner: runner, Discoverer: fixedDiscoverer(tenFiles())}

	_, err := loader.Run(context.Background(), "/data/dump")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRegistrationFailed))
	assert.Empty(t, runner.callsMatching("rdf_loader_run"))
	assert.Empty(t, runner.callsMatching("checkpoint;"))
}

func TestBulkNoFilesRegistered(t *testing.T) {
	runner := &fakeRunner{statsStdout: "0  NULL  NULL\n"}
	loader := &BulkLoader{Config: testLoadConfig(2), Runner: runner, Discoverer: fixedDiscoverer(tenFiles())}

	_, err := loader.Run(context.Background(), "/data/dump")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoFiles))
	assert.Empty(t, runner.callsMatching("rdf_loader_run"))
}

func TestBulkNoFilesDiscovered(t *testing.T) {
	runner := &fakeRunner{}
	loader := &BulkLoader{Config: testLoadConfig(2), Runner: runner, Discoverer: fixedDiscoverer(nil)}

	_, err := loader.Run(context.Background(), "/data/empty")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoFiles))
	assert.Empty(t, runner.callsMatching("ld_dir"))
}

func TestBulkAccessFailureBlocksRegistration(t *testing.T) {
	runner := &fakeRunner{
		fileStatStderr: "*** Error 42000: SR157: Security violation: cannot open /data/dump/part-000.nq",
	}
	loader := &BulkLoader{Config: testLoadConfig(2), Runner: runner, Discoverer: fixedDiscoverer(tenFiles())}

	_, err := loader.Run(context.Background(), "/data/dump")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnreachable))
	assert.Contains(t, errors.FlattenHints(err), "DirsAllowed")

	// The directory never reaches load_list on a failed probe
	assert.Len(t, runner.callsMatching("file_stat"), 1)
	assert.Empty(t, runner.callsMatching("ld_dir"))
	assert.Empty(t, runner.callsMatching("rdf_loader_run"))
}

func TestBulkCheckpointFailure(t *testing.T) {
	runner := &fakeRunner{
		statsStdout:      "5  5  0\n",
		checkpointStderr: "*** Error: checkpoint is blocked",
	}
	loader := &BulkLoader{Config: testLoadConfig(2), Runner: runner, Discoverer: fixedDiscoverer(tenFiles())}

	outcome, err := loader.Run(context.Background(), "/data/dump")
	require.Error(t, err)
	assert.True(t, errors.IsCritical(err))
	require.NotNil(t, outcome)
	assert.Equal(t, 5, outcome.Succeeded)
	assert.Equal(t, PhaseFailed, outcome.Phase)
}

func TestBulkWorkerFailureStillCheckpoints(t *testing.T) {
	ledger := internaltesting.CreateTestLedger(t)
	runner := &fakeRunner{
		loaderStderr: "*** Error 37000: SP029: parse error at line 3",
		statsStdout:  "10  8  2\n",
	}
	loader := &BulkLoader{
		Config:     testLoadConfig(2),
		Runner:     runner,
		Discoverer: fixedDiscoverer(tenFiles()),
		Ledger:     ledger,
	}

	outcome, err := loader.Run(context.Background(), "/data/dump")
	require.Error(t, err)
	assert.False(t, errors.IsCritical(err), "a worker failure is not a durability failure")

	// The surviving workers' loads still get committed
	assert.Len(t, runner.callsMatching("checkpoint;"), 1)

	require.NotNil(t, outcome)
	assert.Equal(t, 8, outcome.Succeeded)
	assert.Equal(t, 2, outcome.Failed)
	assert.Equal(t, PhaseFailed, outcome.Phase)

	rec, lerr := ledger.GetSession(outcome.SessionID)
	require.NoError(t, lerr)
	assert.Equal(t, "failed", rec.Phase)
}

// recordProgress tallies Advance calls
type recordProgress struct{ advanced int }

func (p *recordProgress) Start(int, string) {}
func (p *recordProgress) Advance(n int)     { p.advanced += n }
func (p *recordProgress) Stop()             {}

func TestBulkPollCountsOnlyFinishedRows(t *testing.T) {
	// 10 registered, 2 loaded so far: 8 rows still carry ll_state <> 2
	runner := &fakeRunner{remainingStdout: "8\n\n1 Rows. -- 1 msec.\n"}
	progress := &recordProgress{}
	loader := &BulkLoader{
		Config:   testLoadConfig(2),
		Runner:   runner,
		Progress: progress,
	}

	reported := loader.pollOnce(context.Background(), 10, 0)
	assert.Equal(t, 2, reported)
	assert.Equal(t, 2, progress.advanced)

	// No movement on the server means no movement on the bar
	reported = loader.pollOnce(context.Background(), 10, reported)
	assert.Equal(t, 2, reported)
	assert.Equal(t, 2, progress.advanced)
}
