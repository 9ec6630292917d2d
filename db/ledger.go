package db

import (
	"database/sql"
	"time"

	"github.com/virtuoso-tools/virtload/errors"
)

// SessionRecord is one load session as persisted in the ledger
type SessionRecord struct {
	ID         string
	Directory  string
	Pattern    string
	Mode       string
	Workers    int
	Phase      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Succeeded  int
	Failed     int
	Error      string
}

// ItemRecord is one file's outcome within a session
type ItemRecord struct {
	SessionID string
	Path      string
	State     string
	Worker    *int
	Error     string
}

// Ledger persists sessions and per-file outcomes
type Ledger struct {
	conn *sql.DB
}

// NewLedger wraps an open connection
func NewLedger(conn *sql.DB) *Ledger {
	return &Ledger{conn: conn}
}

// Close closes the underlying connection
func (l *Ledger) Close() error {
	return l.conn.Close()
}

// ClearPrior removes earlier sessions recorded for the same directory. A
// new session's registration supersedes whatever a previous run left
// behind, so the ledger mirrors that.
func (l *Ledger) ClearPrior(directory string) error {
	if _, err := l.conn.Exec(
		"DELETE FROM load_sessions WHERE directory = ?", directory,
	); err != nil {
		return errors.Wrapf(err, "failed to clear prior sessions for %s", directory)
	}
	return nil
}

// CreateSession records a new session and its full pending work set in one
// transaction, so a session is never visible without its items.
func (l *Ledger) CreateSession(rec SessionRecord, files []string) error {
	tx, err := l.conn.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin session transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO load_sessions (id, directory, pattern, mode, workers, phase)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Directory, rec.Pattern, rec.Mode, rec.Workers, rec.Phase,
	); err != nil {
		return errors.Wrapf(err, "failed to insert session %s", rec.ID)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO load_items (session_id, path, state) VALUES (?, ?, 'pending')")
	if err != nil {
		return errors.Wrap(err, "failed to prepare item insert")
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.Exec(rec.ID, f); err != nil {
			return errors.Wrapf(err, "failed to insert item %s", f)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit session %s", rec.ID)
	}
	return nil
}

// MarkItem records a file's new state. Worker and errText may be zero
// values when not applicable.
func (l *Ledger) MarkItem(sessionID, path, state string, worker int, errText string) error {
	var workerVal any
	if worker >= 0 {
		workerVal = worker
	}
	var errVal any
	if errText != "" {
		errVal = errText
	}
	if _, err := l.conn.Exec(
		`UPDATE load_items SET state = ?, worker = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE session_id = ? AND path = ?`,
		state, workerVal, errVal, sessionID, path,
	); err != nil {
		return errors.Wrapf(err, "failed to mark item %s", path)
	}
	return nil
}

// UpdatePhase records a session phase transition
func (l *Ledger) UpdatePhase(sessionID, phase string) error {
	if _, err := l.conn.Exec(
		"UPDATE load_sessions SET phase = ? WHERE id = ?", phase, sessionID,
	); err != nil {
		return errors.Wrapf(err, "failed to update phase for session %s", sessionID)
	}
	return nil
}

// FinishSession records the terminal phase and final tallies
func (l *Ledger) FinishSession(sessionID, phase string, succeeded, failed int, errText string) error {
	var errVal any
	if errText != "" {
		errVal = errText
	}
	if _, err := l.conn.Exec(
		`UPDATE load_sessions
		 SET phase = ?, succeeded = ?, failed = ?, error = ?, finished_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		phase, succeeded, failed, errVal, sessionID,
	); err != nil {
		return errors.Wrapf(err, "failed to finish session %s", sessionID)
	}
	return nil
}

// LatestSession returns the most recently started session, or nil when the
// ledger is empty.
func (l *Ledger) LatestSession() (*SessionRecord, error) {
	row := l.conn.QueryRow(
		`SELECT id, directory, pattern, mode, workers, phase, started_at, finished_at,
		        succeeded, failed, COALESCE(error, '')
		 FROM load_sessions ORDER BY started_at DESC, id DESC LIMIT 1`)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// GetSession returns one session by ID
func (l *Ledger) GetSession(id string) (*SessionRecord, error) {
	row := l.conn.QueryRow(
		`SELECT id, directory, pattern, mode, workers, phase, started_at, finished_at,
		        succeeded, failed, COALESCE(error, '')
		 FROM load_sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf("no session with ID %s", id)
	}
	return rec, err
}

func scanSession(row *sql.Row) (*SessionRecord, error) {
	var rec SessionRecord
	var finished sql.NullTime
	if err := row.Scan(
		&rec.ID, &rec.Directory, &rec.Pattern, &rec.Mode, &rec.Workers, &rec.Phase,
		&rec.StartedAt, &finished, &rec.Succeeded, &rec.Failed, &rec.Error,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to scan session row")
	}
	if finished.Valid {
		rec.FinishedAt = &finished.Time
	}
	return &rec, nil
}

// ItemsByState lists a session's items in a given state, capped at limit
// (0 means no cap). Used for failure samples in status output.
func (l *Ledger) ItemsByState(sessionID, state string, limit int) ([]ItemRecord, error) {
	query := `SELECT session_id, path, state, worker, COALESCE(error, '')
	          FROM load_items WHERE session_id = ? AND state = ? ORDER BY path`
	args := []any{sessionID, state}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.conn.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s items", state)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var item ItemRecord
		var worker sql.NullInt64
		if err := rows.Scan(&item.SessionID, &item.Path, &item.State, &worker, &item.Error); err != nil {
			return nil, errors.Wrap(err, "failed to scan item row")
		}
		if worker.Valid {
			w := int(worker.Int64)
			item.Worker = &w
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountByState tallies a session's items per state
func (l *Ledger) CountByState(sessionID string) (map[string]int, error) {
	rows, err := l.conn.Query(
		"SELECT state, COUNT(*) FROM load_items WHERE session_id = ? GROUP BY state", sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count items by state")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan count row")
		}
		counts[state] = n
	}
	return counts, rows.Err()
}
