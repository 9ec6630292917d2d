package load

import (
	"context"

	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// Finalizer restores the server to its steady state after a session:
// transaction logging back on, a forced checkpoint, and the regular
// checkpoint and scheduler cadence.
type Finalizer struct {
	Runner             isql.Runner
	CheckpointInterval int
	SchedulerInterval  int
	Log                *zap.SugaredLogger
}

// Checkpoint runs the finalization batch. A failure here is the one error
// class with durability consequences: the load ran with transaction
// logging off, so data loaded since the last successful checkpoint exists
// only in memory until one succeeds.
func (f *Finalizer) Checkpoint(ctx context.Context) error {
	// Deliberately not the session context: an interrupt that stopped the
	// workers must not also cancel the checkpoint that makes their
	// completed work durable.
	result, err := f.Runner.Run(context.WithoutCancel(ctx), isql.CheckpointAndRestore(
		f.CheckpointInterval, f.SchedulerInterval))

	var base error
	switch {
	case err != nil:
		base = errors.Wrapf(errors.ErrCheckpointFailed, "could not run isql: %v", err)
	case !result.OK:
		base = errors.Wrapf(errors.ErrCheckpointFailed,
			"checkpoint failed: %s", isql.ErrorLine(result))
	default:
		if f.Log != nil {
			f.Log.Infow("Checkpoint complete",
				"checkpoint_interval", f.CheckpointInterval,
				"scheduler_interval", f.SchedulerInterval,
			)
		}
		return nil
	}

	return errors.WithHint(base,
		"transaction logging was disabled during the load; if the server restarts "+
			"before a successful checkpoint, loaded data may be lost. "+
			"Run 'checkpoint;' manually via isql as soon as possible.")
}
