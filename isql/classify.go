package isql

import "strings"

// Code is a coarse classification of a failed isql invocation. All
// substring matching against Virtuoso's error text lives here so callers
// branch on codes, never on raw stderr.
type Code int

const (
	CodeOK Code = iota
	// CodeSecurityViolation means the server refused a file path outside
	// its DirsAllowed configuration.
	CodeSecurityViolation
	// CodeFileAccess means the server process could not open or stat the
	// file (missing, unreadable, wrong path from the server's view).
	CodeFileAccess
	// CodeConnect means the client could not reach the server at all.
	CodeConnect
	// CodeRegistration means directory registration failed (FA020 family,
	// unlistable directories).
	CodeRegistration
	// CodeSQL is any other server-reported error.
	CodeSQL
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeSecurityViolation:
		return "security-violation"
	case CodeFileAccess:
		return "file-access"
	case CodeConnect:
		return "connect"
	case CodeRegistration:
		return "registration"
	default:
		return "sql-error"
	}
}

// Classify maps a Result onto a Code by inspecting the error text. Both
// streams are scanned: isql versions differ on where server errors land.
func Classify(r Result) Code {
	if r.OK {
		return CodeOK
	}
	text := r.Stderr + "\n" + r.Stdout
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "security violation"):
		return CodeSecurityViolation
	case strings.Contains(text, "FA020") || strings.Contains(lower, "unable to list files"):
		return CodeRegistration
	case strings.Contains(lower, "connection failed") ||
		strings.Contains(lower, "connect failed") ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(text, "CL033") ||
		strings.Contains(text, "08001") ||
		strings.Contains(text, "08S01"):
		return CodeConnect
	case strings.Contains(lower, "no such file") ||
		strings.Contains(lower, "can't open file") ||
		strings.Contains(lower, "cannot open file") ||
		strings.Contains(text, "FA003") ||
		strings.Contains(text, "FA111"):
		return CodeFileAccess
	default:
		return CodeSQL
	}
}

// Unreachable reports whether the code means the file can never load as
// addressed: retrying the same path is pointless.
func (c Code) Unreachable() bool {
	return c == CodeSecurityViolation || c == CodeFileAccess
}

// ErrorLine extracts the first server error line from a result for compact
// reporting, falling back to the first non-empty line of either stream.
func ErrorLine(r Result) string {
	var fallback string
	for _, stream := range []string{r.Stderr, r.Stdout} {
		for line := range strings.Lines(stream) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "*** Error") {
				return line
			}
			if fallback == "" {
				fallback = line
			}
		}
	}
	return fallback
}
