package load

import (
	"time"

	"github.com/virtuoso-tools/virtload/isql"
)

// Item states as persisted in the ledger
const (
	ItemPending = "pending"
	ItemLoaded  = "loaded"
	ItemFailed  = "failed"
)

// WorkItem is one file waiting to be loaded
type WorkItem struct {
	Path string
}

// WorkerResult is the outcome of loading one file, sent from a worker to
// the aggregator. Workers never touch shared tallies directly.
type WorkerResult struct {
	Worker    int
	Path      string
	OK        bool
	Code      isql.Code
	ErrorText string
	Elapsed   time.Duration
}
