package isql

import (
	"fmt"
	"strings"
)

// ttlpNQuadFlags tells TTLP to take the graph from each quad (flag 512),
// which is what makes N-Quads loading independent of the placeholder graph.
const ttlpNQuadFlags = 512

// EscapeString escapes a value for inclusion in a single-quoted SQL literal
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// TTLPLoad builds the statement loading one N-Quads file. Gzipped files go
// through gz_file_open. TTLP requires a non-null base URI and a graph URI
// even though flag 512 makes the graph argument a placeholder.
func TTLPLoad(path, placeholderGraph string) string {
	open := "file_open"
	if strings.HasSuffix(path, ".gz") {
		open = "gz_file_open"
	}
	return fmt.Sprintf("TTLP(%s('%s'), '', '%s', %d);",
		open, EscapeString(path), EscapeString(placeholderGraph), ttlpNQuadFlags)
}

// FileStat builds the access probe for one file
func FileStat(path string) string {
	return fmt.Sprintf("SELECT file_stat('%s');", EscapeString(path))
}

// LdDir builds the bulk registration call for one directory level
func LdDir(dir, pattern, graph string) string {
	return fmt.Sprintf("ld_dir('%s', '%s', '%s');",
		EscapeString(dir), EscapeString(pattern), EscapeString(graph))
}

// LdDirAll builds the recursive bulk registration call
func LdDirAll(dir, pattern, graph string) string {
	return fmt.Sprintf("ld_dir_all('%s', '%s', '%s');",
		EscapeString(dir), EscapeString(pattern), EscapeString(graph))
}

// RdfLoaderRun builds the loader-worker statement. Every concurrent worker
// issues this; Virtuoso's load_list row locking arbitrates claims.
func RdfLoaderRun() string {
	return "rdf_loader_run();"
}

// LogEnable builds the transaction-logging mode switch. Mode 2 disables
// transaction logging for bulk-load speed; mode 3 restores full logging.
func LogEnable(mode int) string {
	return fmt.Sprintf("log_enable(%d, 1);", mode)
}

// CheckpointAndRestore builds the single crash-safe finalization batch:
// restore full logging, force a checkpoint, then restore the steady-state
// checkpoint and scheduler cadence.
func CheckpointAndRestore(checkpointIntervalSec, schedulerIntervalSec int) string {
	return fmt.Sprintf("log_enable(3, 1); checkpoint; checkpoint_interval(%d); scheduler_interval(%d);",
		checkpointIntervalSec, schedulerIntervalSec)
}

// ServerStatus builds the liveness probe used while waiting for a freshly
// launched server to accept connections.
func ServerStatus() string {
	return "status();"
}

// LoadListStats counts registered, loaded and problematic rows in the
// shared work queue. ll_state 2 means loaded.
func LoadListStats() string {
	return "SELECT COUNT(*), SUM(CASE WHEN ll_state = 2 AND ll_error IS NULL THEN 1 ELSE 0 END), " +
		"SUM(CASE WHEN ll_state <> 2 OR ll_error IS NOT NULL THEN 1 ELSE 0 END) FROM DB.DBA.load_list;"
}

// LoadListRemaining counts rows not yet in a terminal loaded state
func LoadListRemaining() string {
	return "SELECT COUNT(*) FROM DB.DBA.load_list WHERE ll_state <> 2;"
}

// LoadListFailures lists files that did not load cleanly
func LoadListFailures() string {
	return "SELECT ll_file, ll_error FROM DB.DBA.load_list WHERE ll_state <> 2 OR ll_error IS NOT NULL;"
}

// LoadListClear removes prior registration state for a directory so a new
// session starts from exactly the discovered set.
func LoadListClear(dir string) string {
	prefix := strings.TrimSuffix(dir, "/")
	return fmt.Sprintf("DELETE FROM DB.DBA.load_list WHERE ll_file LIKE '%s/%%';", EscapeString(prefix))
}
