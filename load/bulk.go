package load

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/virtuoso-tools/virtload/config"
	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/discover"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// BulkLoader orchestrates a bulk session: directories are registered in the
// server's own work queue (DB.DBA.load_list) and claimed by concurrent
// rdf_loader_run workers. The server arbitrates claims; this side only
// supplies worker processes and watches progress.
type BulkLoader struct {
	Config     *config.Config
	Runner     isql.Runner
	Discoverer discover.Discoverer
	Ledger     *db.Ledger
	Progress   Progress
	Probe      config.ParallelismProbe
	Log        *zap.SugaredLogger
}

// Run executes a full bulk session over dir
func (b *BulkLoader) Run(ctx context.Context, dir string) (*Outcome, error) {
	cfg := b.Config

	if err := ValidateReachable(ctx, b.Runner); err != nil {
		return nil, err
	}

	// Registration through ld_dir happens entirely server-side, so the
	// access probe runs against a discovered sample first: a DirsAllowed
	// or path mistake fails here instead of leaving an empty load_list.
	files, err := b.Discoverer.Discover(ctx, dir, cfg.Load.Pattern, cfg.Load.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(errors.ErrNoFiles,
			"no files matching %s in %s", cfg.Load.Pattern, dir)
	}
	if err := ValidateAccess(ctx, b.Runner, files[0]); err != nil {
		return nil, err
	}

	workers, err := cfg.ResolveWorkers(b.Probe)
	if err != nil {
		return nil, err
	}

	registrar := &BulkRegistrar{Runner: b.Runner, Log: b.Log}
	total, err := registrar.Register(ctx, dir, cfg.Load.Pattern, cfg.Load.PlaceholderGraph, cfg.Load.Recursive)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, errors.Wrapf(errors.ErrNoFiles,
			"no files matching %s registered from %s", cfg.Load.Pattern, dir)
	}

	session := NewSession(dir, cfg.Load.Pattern, ModeBulk, workers, cfg.Load.PlaceholderGraph)
	if b.Ledger != nil {
		if err := b.Ledger.ClearPrior(dir); err != nil {
			return nil, err
		}
		if err := b.Ledger.CreateSession(session.Record(PhaseDispatching), nil); err != nil {
			return nil, err
		}
	}

	outcome := &Outcome{SessionID: session.ID, Mode: ModeBulk, Total: total}

	if b.Log != nil {
		b.Log.Infow("Starting bulk load",
			"session", session.ID, "dir", dir, "files", total, "workers", workers)
	}
	if b.Progress != nil {
		b.Progress.Start(total, "Bulk loading")
	}

	workerErrs := b.runLoaderWorkers(ctx, workers, total)
	if b.Progress != nil {
		b.Progress.Stop()
	}

	if ctx.Err() != nil {
		// Killed rdf_loader_run processes leave the server-side queue in an
		// unknown state; no checkpoint is attempted.
		err := errors.Wrap(errors.ErrInterrupted, "bulk load interrupted")
		b.finishBulk(session, outcome, PhaseFailed, err)
		return outcome, err
	}

	// A failed loader worker does not skip the checkpoint: the surviving
	// workers loaded files under reduced durability, and that work must be
	// committed regardless. The failure is folded into the session outcome.
	var workerFailure error
	for _, werr := range workerErrs {
		if werr != nil {
			workerFailure = werr
			break
		}
	}

	b.collectBulkOutcome(ctx, outcome)

	b.setPhase(session.ID, PhaseCheckpointing)
	finalizer := &Finalizer{
		Runner:             b.Runner,
		CheckpointInterval: cfg.Load.CheckpointIntervalSeconds,
		SchedulerInterval:  cfg.Load.SchedulerIntervalSeconds,
		Log:                b.Log,
	}
	if cpErr := finalizer.Checkpoint(ctx); cpErr != nil {
		b.finishBulk(session, outcome, PhaseFailed, cpErr)
		return outcome, cpErr
	}

	if workerFailure != nil {
		b.finishBulk(session, outcome, PhaseFailed, workerFailure)
		return outcome, workerFailure
	}

	b.finishBulk(session, outcome, PhaseDone, nil)
	if b.Log != nil {
		b.Log.Infow("Bulk load complete",
			"session", session.ID,
			"succeeded", outcome.Succeeded,
			"failed", outcome.Failed,
			"elapsed", outcome.Elapsed,
		)
	}
	return outcome, nil
}

// runLoaderWorkers starts one rdf_loader_run process per worker plus a
// rate-limited progress poller, and waits for the workers to finish.
func (b *BulkLoader) runLoaderWorkers(ctx context.Context, workers, total int) []error {
	workerErrs := make([]error, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := b.Runner.Run(ctx, isql.RdfLoaderRun())
			switch {
			case err != nil && ctx.Err() == nil:
				workerErrs[w] = err
			case err == nil && !result.OK:
				workerErrs[w] = errors.Newf("loader worker %d failed: %s", w, isql.ErrorLine(result))
			}
		}()
	}

	pollCtx, stopPoll := context.WithCancel(ctx)
	var pollWg sync.WaitGroup
	pollWg.Add(1)
	go func() {
		defer pollWg.Done()
		b.poll(pollCtx, total)
	}()

	wg.Wait()
	stopPoll()
	pollWg.Wait()
	return workerErrs
}

// poll watches the server-side queue and advances the progress bar. The
// limiter caps how often load_list is queried so polling never competes
// with the load itself.
func (b *BulkLoader) poll(ctx context.Context, total int) {
	interval := time.Duration(b.Config.Load.PollIntervalSeconds) * time.Second
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	reported := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		reported = b.pollOnce(ctx, total, reported)
	}
}

// pollOnce advances progress to total minus the not-yet-loaded row count.
// Mid-run rows carry ll_state 0, so remaining is the only load_list column
// that distinguishes pending work from finished work.
func (b *BulkLoader) pollOnce(ctx context.Context, total, reported int) int {
	result, err := b.Runner.Run(ctx, isql.LoadListRemaining())
	if err != nil || !result.OK {
		return reported
	}
	remaining, err := isql.ParseRemaining(result.Stdout)
	if err != nil {
		return reported
	}
	finished := total - remaining
	if finished > reported {
		if b.Progress != nil {
			b.Progress.Advance(finished - reported)
		}
		reported = finished
	}
	return reported
}

// collectBulkOutcome reads final tallies and a failure sample from the
// server-side queue.
func (b *BulkLoader) collectBulkOutcome(ctx context.Context, outcome *Outcome) {
	result, err := b.Runner.Run(ctx, isql.LoadListStats())
	if err == nil && result.OK {
		if stats, perr := isql.ParseLoadListStats(result.Stdout); perr == nil {
			outcome.Total = stats.Total
			outcome.Succeeded = stats.Loaded
			outcome.Failed = stats.Issues
		}
	}

	if outcome.Failed == 0 {
		return
	}
	result, err = b.Runner.Run(ctx, isql.LoadListFailures())
	if err == nil && result.OK {
		failures := isql.ParseFailures(result.Stdout)
		if len(failures) > MaxFailureSample {
			failures = failures[:MaxFailureSample]
		}
		outcome.Failures = failures
	}
}

func (b *BulkLoader) setPhase(sessionID string, phase Phase) {
	if b.Ledger == nil {
		return
	}
	if err := b.Ledger.UpdatePhase(sessionID, phase.String()); err != nil && b.Log != nil {
		b.Log.Errorw("Failed to record phase", "phase", phase.String(), "error", err)
	}
}

func (b *BulkLoader) finishBulk(session Session, outcome *Outcome, phase Phase, cause error) {
	outcome.finish(phase, session.StartedAt)
	if b.Ledger == nil {
		return
	}
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	if err := b.Ledger.FinishSession(session.ID, phase.String(),
		outcome.Succeeded, outcome.Failed, errText); err != nil && b.Log != nil {
		b.Log.Errorw("Failed to record session outcome", "session", session.ID, "error", err)
	}
}
