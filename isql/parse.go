package isql

import (
	"strconv"
	"strings"

	"github.com/virtuoso-tools/virtload/errors"
)

// LoadListStatsRow is the aggregate state of the server-side work queue
type LoadListStatsRow struct {
	Total  int
	Loaded int
	Issues int
}

// Failure is one problematic row from the server-side work queue
type Failure struct {
	File  string
	Error string
}

// dataRows strips isql's banner, column headers, separator rules and row
// count trailer, leaving only result rows.
func dataRows(stdout string) []string {
	var rows []string
	for line := range strings.Lines(stdout) {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Connected to") ||
			strings.HasPrefix(trimmed, "Driver:") ||
			strings.HasPrefix(trimmed, "OpenLink") {
			continue
		}
		if strings.HasPrefix(trimmed, "_") || strings.HasPrefix(trimmed, "=") {
			continue
		}
		if strings.Contains(trimmed, "Rows.") && strings.Contains(trimmed, "msec") {
			continue
		}
		// Column header lines echo the SELECT expressions and their types
		if strings.HasPrefix(trimmed, "VARCHAR") || strings.HasPrefix(trimmed, "INTEGER") ||
			strings.HasPrefix(trimmed, "callret") || strings.HasPrefix(trimmed, "aggregate") ||
			strings.HasPrefix(trimmed, "ll_file") {
			continue
		}
		rows = append(rows, trimmed)
	}
	return rows
}

func parseCount(field string) (int, error) {
	field = strings.TrimSpace(field)
	if field == "" || strings.EqualFold(field, "NULL") {
		return 0, nil // SUM over an empty table yields NULL
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected count value %q", field)
	}
	return n, nil
}

// ParseLoadListStats parses the output of the LoadListStats query
func ParseLoadListStats(stdout string) (LoadListStatsRow, error) {
	rows := dataRows(stdout)
	if len(rows) == 0 {
		return LoadListStatsRow{}, errors.New("no stats row in isql output")
	}
	fields := strings.Fields(rows[len(rows)-1])
	if len(fields) < 3 {
		return LoadListStatsRow{}, errors.Newf("malformed stats row: %q", rows[len(rows)-1])
	}

	var stats LoadListStatsRow
	var err error
	if stats.Total, err = parseCount(fields[0]); err != nil {
		return LoadListStatsRow{}, err
	}
	if stats.Loaded, err = parseCount(fields[1]); err != nil {
		return LoadListStatsRow{}, err
	}
	if stats.Issues, err = parseCount(fields[2]); err != nil {
		return LoadListStatsRow{}, err
	}
	return stats, nil
}

// ParseRemaining parses the output of the LoadListRemaining query
func ParseRemaining(stdout string) (int, error) {
	rows := dataRows(stdout)
	if len(rows) == 0 {
		return 0, errors.New("no count row in isql output")
	}
	return parseCount(strings.Fields(rows[len(rows)-1])[0])
}

// ParseFailures parses the output of the LoadListFailures query. The error
// column may contain spaces, so only the first field is treated as the file.
func ParseFailures(stdout string) []Failure {
	var failures []Failure
	for _, row := range dataRows(stdout) {
		fields := strings.SplitN(row, " ", 2)
		f := Failure{File: fields[0]}
		if len(fields) > 1 {
			f.Error = strings.TrimSpace(fields[1])
		}
		if f.Error == "" || strings.EqualFold(f.Error, "NULL") {
			f.Error = "not loaded"
		}
		failures = append(failures, f)
	}
	return failures
}
