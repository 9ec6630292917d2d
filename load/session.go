package load

import (
	"time"

	"github.com/google/uuid"

	"github.com/virtuoso-tools/virtload/db"
	"github.com/virtuoso-tools/virtload/isql"
)

// Mode selects how files reach the server
type Mode string

const (
	// ModeParallel loads each file through its own isql process via TTLP
	ModeParallel Mode = "parallel"
	// ModeBulk registers directories in the server's load_list and runs
	// concurrent rdf_loader_run workers against it
	ModeBulk Mode = "bulk"
)

// MaxFailureSample caps how many per-file failures are carried in an
// Outcome; the full set stays in the ledger.
const MaxFailureSample = 10

// Session identifies one load run
type Session struct {
	ID               string
	Directory        string
	Pattern          string
	Mode             Mode
	Workers          int
	PlaceholderGraph string
	StartedAt        time.Time
}

// NewSession mints a session with a fresh ID
func NewSession(dir, pattern string, mode Mode, workers int, graph string) Session {
	return Session{
		ID:               uuid.NewString(),
		Directory:        dir,
		Pattern:          pattern,
		Mode:             mode,
		Workers:          workers,
		PlaceholderGraph: graph,
		StartedAt:        time.Now(),
	}
}

// Record converts the session to its ledger representation
func (s Session) Record(phase Phase) db.SessionRecord {
	return db.SessionRecord{
		ID:        s.ID,
		Directory: s.Directory,
		Pattern:   s.Pattern,
		Mode:      string(s.Mode),
		Workers:   s.Workers,
		Phase:     phase.String(),
	}
}

// Outcome is the final tally of a session. Succeeded plus Failed always
// equals Total once a session drains cleanly.
type Outcome struct {
	SessionID string         `json:"session_id"`
	Mode      Mode           `json:"mode"`
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Phase     Phase          `json:"-"`
	PhaseName string         `json:"phase"`
	Failures  []isql.Failure `json:"failures,omitempty"`
	Elapsed   time.Duration  `json:"elapsed_ns"`
}

func (o *Outcome) finish(phase Phase, started time.Time) {
	o.Phase = phase
	o.PhaseName = phase.String()
	o.Elapsed = time.Since(started)
}
