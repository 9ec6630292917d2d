// Package load implements load sessions against a Virtuoso server: file
// discovery hand-off, registration, the worker pool, result aggregation and
// crash-safe finalization.
package load

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/config"
	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/discover"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// Loader orchestrates a parallel session: one isql process per file,
// claims from an in-process queue sealed with termination tokens.
type Loader struct {
	Config     *config.Config
	Runner     isql.Runner
	Discoverer discover.Discoverer
	Ledger     *db.Ledger
	Progress   Progress
	Probe      config.ParallelismProbe
	Log        *zap.SugaredLogger
}

// Run executes a full parallel session over dir. The returned Outcome is
// non-nil whenever a session was actually started, including failed and
// interrupted ones, so callers can always report tallies.
func (l *Loader) Run(ctx context.Context, dir string) (*Outcome, error) {
	cfg := l.Config

	if err := ValidateReachable(ctx, l.Runner); err != nil {
		return nil, err
	}

	files, err := l.Discoverer.Discover(ctx, dir, cfg.Load.Pattern, cfg.Load.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(errors.ErrNoFiles,
			"no files matching %s in %s", cfg.Load.Pattern, dir)
	}

	// Worker count is resolved before anything is registered: the queue's
	// termination token count is fixed at seal time.
	workers, err := cfg.ResolveWorkers(l.Probe)
	if err != nil {
		return nil, err
	}

	session := NewSession(dir, cfg.Load.Pattern, ModeParallel, workers, cfg.Load.PlaceholderGraph)
	registrar := &Registrar{Runner: l.Runner, Ledger: l.Ledger, Log: l.Log}
	queue, err := registrar.Prepare(ctx, session, files)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{SessionID: session.ID, Mode: ModeParallel, Total: len(files)}

	if l.Log != nil {
		l.Log.Infow("Starting parallel load",
			"session", session.ID, "dir", dir, "files", len(files), "workers", workers)
	}
	if l.Progress != nil {
		l.Progress.Start(len(files), "Loading files")
	}

	dispatcher := &Dispatcher{
		Workers:          workers,
		Runner:           l.Runner,
		PlaceholderGraph: session.PlaceholderGraph,
		GraceTimeout:     time.Duration(cfg.Load.GraceTimeoutSeconds) * time.Second,
		Log:              l.Log,
	}
	aggregator := &Aggregator{
		Ledger:    l.Ledger,
		SessionID: session.ID,
		Progress:  l.Progress,
		Log:       l.Log,
	}

	results := make(chan WorkerResult, len(files))
	tallyCh := make(chan Tally, 1)
	go func() {
		tallyCh <- aggregator.Collect(ctx, results)
	}()

	l.setPhase(session.ID, PhaseDispatching)
	forced, dispatchErr := dispatcher.Run(ctx, queue, results)
	l.setPhase(session.ID, PhaseDraining)

	tally := <-tallyCh
	if l.Progress != nil {
		l.Progress.Stop()
	}
	outcome.Succeeded = tally.Succeeded
	outcome.Failed = tally.Failed
	outcome.Failures = tally.Sample

	if forced {
		// Unclean drain: workers were abandoned, so server-side state is
		// unknown and a checkpoint is not attempted.
		l.finishSession(session, outcome, PhaseFailed, dispatchErr)
		return outcome, dispatchErr
	}

	l.setPhase(session.ID, PhaseCheckpointing)
	finalizer := &Finalizer{
		Runner:             l.Runner,
		CheckpointInterval: cfg.Load.CheckpointIntervalSeconds,
		SchedulerInterval:  cfg.Load.SchedulerIntervalSeconds,
		Log:                l.Log,
	}
	if cpErr := finalizer.Checkpoint(ctx); cpErr != nil {
		l.finishSession(session, outcome, PhaseFailed, cpErr)
		return outcome, cpErr
	}

	if dispatchErr != nil {
		// Interrupted but drained within grace: completed work was
		// checkpointed, the session itself still counts as interrupted.
		l.finishSession(session, outcome, PhaseFailed, dispatchErr)
		return outcome, dispatchErr
	}

	l.finishSession(session, outcome, PhaseDone, nil)
	if l.Log != nil {
		l.Log.Infow("Parallel load complete",
			"session", session.ID,
			"succeeded", outcome.Succeeded,
			"failed", outcome.Failed,
			"elapsed", outcome.Elapsed,
		)
	}
	return outcome, nil
}

func (l *Loader) setPhase(sessionID string, phase Phase) {
	if l.Ledger == nil {
		return
	}
	if err := l.Ledger.UpdatePhase(sessionID, phase.String()); err != nil && l.Log != nil {
		l.Log.Errorw("Failed to record phase", "phase", phase.String(), "error", err)
	}
}

func (l *Loader) finishSession(session Session, outcome *Outcome, phase Phase, cause error) {
	outcome.finish(phase, session.StartedAt)
	if l.Ledger == nil {
		return
	}
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	if err := l.Ledger.FinishSession(session.ID, phase.String(),
		outcome.Succeeded, outcome.Failed, errText); err != nil && l.Log != nil {
		l.Log.Errorw("Failed to record session outcome", "session", session.ID, "error", err)
	}
}
