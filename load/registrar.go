package load

import (
	"context"

	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// Registrar prepares a parallel session: it probes file access through the
// server, supersedes prior ledger state for the directory, records the new
// session, and builds the sealed work queue.
type Registrar struct {
	Runner isql.Runner
	Ledger *db.Ledger
	Log    *zap.SugaredLogger
}

// Prepare commits the session. Callers must have already resolved the
// worker count: the queue's termination tokens are minted here and their
// count cannot change afterwards.
func (r *Registrar) Prepare(ctx context.Context, session Session, files []string) (*Queue, error) {
	if len(files) == 0 {
		return nil, errors.Wrapf(errors.ErrNoFiles, "nothing to register in %s", session.Directory)
	}

	// One probe stands in for all files: they share a directory, so access
	// failures are configuration problems, not per-file ones.
	if err := ValidateAccess(ctx, r.Runner, files[0]); err != nil {
		return nil, err
	}

	if r.Ledger != nil {
		if err := r.Ledger.ClearPrior(session.Directory); err != nil {
			return nil, err
		}
		if err := r.Ledger.CreateSession(session.Record(PhaseDispatching), files); err != nil {
			return nil, err
		}
	}

	items := make([]WorkItem, len(files))
	for i, f := range files {
		items[i] = WorkItem{Path: f}
	}

	if r.Log != nil {
		r.Log.Infow("Session registered",
			"session", session.ID,
			"files", len(files),
			"workers", session.Workers,
		)
	}

	return NewQueue(items, session.Workers), nil
}

// BulkRegistrar prepares a bulk session against the server's own work
// queue (DB.DBA.load_list).
type BulkRegistrar struct {
	Runner isql.Runner
	Log    *zap.SugaredLogger
}

// Register clears prior load_list rows for the directory, registers the
// matching files, and returns how many rows the registration produced.
func (r *BulkRegistrar) Register(ctx context.Context, dir, pattern, graph string, recursive bool) (int, error) {
	result, err := r.Runner.Run(ctx, isql.LoadListClear(dir))
	if err != nil {
		return 0, err
	}
	if !result.OK {
		return 0, errors.Wrapf(errors.ErrRegistrationFailed,
			"failed to clear prior registrations: %s", isql.ErrorLine(result))
	}

	stmt := isql.LdDir(dir, pattern, graph)
	if recursive {
		stmt = isql.LdDirAll(dir, pattern, graph)
	}
	result, err = r.Runner.Run(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if !result.OK {
		base := errors.Wrapf(errors.ErrRegistrationFailed,
			"directory registration failed: %s", isql.ErrorLine(result))
		if isql.Classify(result) == isql.CodeSecurityViolation {
			return 0, errors.WithHint(base,
				"add the data directory to DirsAllowed in virtuoso.ini and restart the server")
		}
		return 0, base
	}

	result, err = r.Runner.Run(ctx, isql.LoadListStats())
	if err != nil {
		return 0, err
	}
	if !result.OK {
		return 0, errors.Wrapf(errors.ErrRegistrationFailed,
			"failed to query load_list: %s", isql.ErrorLine(result))
	}
	stats, err := isql.ParseLoadListStats(result.Stdout)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse load_list stats")
	}

	if r.Log != nil {
		r.Log.Infow("Directory registered", "dir", dir, "pattern", pattern, "files", stats.Total)
	}
	return stats.Total, nil
}
