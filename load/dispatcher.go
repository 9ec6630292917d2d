package load

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// Dispatcher runs the worker pool of a parallel session. Each worker claims
// items from the queue and spawns its own isql process per item, so file
// loads run as truly independent OS processes. Results flow to a single
// aggregator over the results channel; workers share no tallies.
type Dispatcher struct {
	Workers          int
	Runner           isql.Runner
	PlaceholderGraph string
	GraceTimeout     time.Duration
	Log              *zap.SugaredLogger
}

// Run dispatches the workers and blocks until the queue drains or the
// context is cancelled. On a clean drain the results channel is closed.
// forced is true when cancelled workers failed to exit within the grace
// timeout and were abandoned; the results channel then stays open and the
// caller must stop consuming on its own context.
func (d *Dispatcher) Run(ctx context.Context, q *Queue, results chan<- WorkerResult) (forced bool, err error) {
	var wg sync.WaitGroup
	for w := range d.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx, w, q, results)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(results)
		if ctx.Err() != nil {
			return false, errors.Wrap(errors.ErrInterrupted, "load interrupted")
		}
		return false, nil
	case <-ctx.Done():
	}

	// Interrupted: the context kills in-flight isql processes, so workers
	// should come back quickly. Give them the grace window, then abandon.
	timer := time.NewTimer(d.GraceTimeout)
	defer timer.Stop()
	select {
	case <-done:
		close(results)
		return false, errors.Wrap(errors.ErrInterrupted, "load interrupted")
	case <-timer.C:
		if d.Log != nil {
			d.Log.Warnw("Workers did not exit within grace timeout, abandoning",
				"grace", d.GraceTimeout)
		}
		return true, errors.Wrapf(errors.ErrInterrupted,
			"workers did not exit within %s grace timeout", d.GraceTimeout)
	}
}

// work is one worker's claim loop. It exits on a termination token, a
// cancelled context, or a claim timeout; never on a failed item.
func (d *Dispatcher) work(ctx context.Context, id int, q *Queue, results chan<- WorkerResult) {
	for {
		item, err := q.Claim(ctx)
		if err != nil {
			if d.Log != nil && !errors.IsInterrupted(err) {
				d.Log.Errorw("Worker abandoning claim loop", "worker", id, "error", err)
			}
			return
		}
		if item == nil {
			return // termination token
		}
		results <- d.loadOne(ctx, id, *item)
	}
}

// loadOne runs one file through TTLP in a fresh isql process. Transaction
// logging is disabled on the load connection for throughput; the finalizer
// checkpoints afterwards. A panic is converted into a failed result so one
// bad item cannot take the worker down.
func (d *Dispatcher) loadOne(ctx context.Context, id int, item WorkItem) (res WorkerResult) {
	started := time.Now()
	res = WorkerResult{Worker: id, Path: item.Path}
	defer func() {
		res.Elapsed = time.Since(started)
		if r := recover(); r != nil {
			res.OK = false
			res.Code = isql.CodeSQL
			res.ErrorText = fmt.Sprintf("worker panic: %v", r)
			if d.Log != nil {
				d.Log.Errorw("Worker recovered from panic", "worker", id, "path", item.Path, "panic", r)
			}
		}
	}()

	sqlText := isql.LogEnable(2) + " " + isql.TTLPLoad(item.Path, d.PlaceholderGraph)
	result, err := d.Runner.Run(ctx, sqlText)
	if err != nil {
		res.Code = isql.CodeConnect
		res.ErrorText = err.Error()
		return res
	}
	if !result.OK {
		res.Code = isql.Classify(result)
		res.ErrorText = isql.ErrorLine(result)
		return res
	}

	res.OK = true
	res.Code = isql.CodeOK
	return res
}
