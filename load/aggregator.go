package load

import (
	"context"

	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/isql"
)

// Tally is the aggregator's running count of a session
type Tally struct {
	Succeeded int
	Failed    int
	Sample    []isql.Failure
}

// Aggregator is the single consumer of worker results. It owns the tallies,
// the ledger writes and the progress display, so none of them need locks.
type Aggregator struct {
	Ledger    *db.Ledger
	SessionID string
	Progress  Progress
	Log       *zap.SugaredLogger
}

// Collect consumes results until the channel closes (clean drain) or the
// context is cancelled (abandoned workers). On cancellation it drains
// whatever is already buffered before returning, so completed work is
// never dropped from the tally.
func (a *Aggregator) Collect(ctx context.Context, results <-chan WorkerResult) Tally {
	var tally Tally
	for {
		select {
		case r, ok := <-results:
			if !ok {
				return tally
			}
			a.record(r, &tally)
		case <-ctx.Done():
			for {
				select {
				case r, ok := <-results:
					if !ok {
						return tally
					}
					a.record(r, &tally)
				default:
					return tally
				}
			}
		}
	}
}

func (a *Aggregator) record(r WorkerResult, tally *Tally) {
	state := ItemLoaded
	if r.OK {
		tally.Succeeded++
	} else {
		tally.Failed++
		state = ItemFailed
		if len(tally.Sample) < MaxFailureSample {
			tally.Sample = append(tally.Sample, isql.Failure{File: r.Path, Error: r.ErrorText})
		}
		if a.Log != nil {
			a.Log.Warnw("File failed to load",
				"path", r.Path,
				"worker", r.Worker,
				"code", r.Code.String(),
				"error", r.ErrorText,
			)
		}
	}

	if a.Ledger != nil {
		if err := a.Ledger.MarkItem(a.SessionID, r.Path, state, r.Worker, r.ErrorText); err != nil && a.Log != nil {
			a.Log.Errorw("Failed to record item outcome", "path", r.Path, "error", err)
		}
	}
	if a.Progress != nil {
		a.Progress.Advance(1)
	}
}
