package load

import (
	"context"
	"time"

	"github.com/virtuoso-tools/virtload/errors"
)

// claimTimeout bounds how long a worker waits for work. The queue is fully
// populated before any worker starts, so a stalled claim means the session
// protocol was violated rather than work being slow to arrive.
const claimTimeout = 30 * time.Second

// Queue is the in-process work queue for a parallel session. Items are
// enqueued up front, followed by exactly one termination token per worker,
// so every worker observes end-of-work without coordination.
type Queue struct {
	ch chan *WorkItem
}

// NewQueue builds a sealed queue: all items, then one nil termination token
// per worker. The channel is buffered to hold everything, so claims never
// block on producers.
func NewQueue(items []WorkItem, workers int) *Queue {
	q := &Queue{ch: make(chan *WorkItem, len(items)+workers)}
	for i := range items {
		q.ch <- &items[i]
	}
	for range workers {
		q.ch <- nil
	}
	return q
}

// Claim takes the next item. A nil item with nil error is a termination
// token: the caller must exit its claim loop. Claims are bounded: a claim
// that produces neither work nor a token within the window is an error.
func (q *Queue) Claim(ctx context.Context) (*WorkItem, error) {
	timer := time.NewTimer(claimTimeout)
	defer timer.Stop()

	select {
	case item := <-q.ch:
		return item, nil
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrInterrupted, "claim cancelled")
	case <-timer.C:
		return nil, errors.New("queue claim timed out without work or termination token")
	}
}

// Len reports how many items and tokens remain unclaimed
func (q *Queue) Len() int {
	return len(q.ch)
}
