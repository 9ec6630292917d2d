package isql

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtuoso-tools/virtload/config"
)

func testRunnerConfig() *config.Config {
	return &config.Config{
		Virtuoso: config.VirtuosoConfig{
			Host:     "localhost",
			Port:     1111,
			User:     "dba",
			Password: "hunter2",
			ISQLPath: "isql",
		},
	}
}

func TestNewRunnerRedactsPassword(t *testing.T) {
	r := NewRunner(testRunnerConfig(), nil)

	assert.Contains(t, r.CommandLine(), "localhost:1111")
	assert.Contains(t, r.CommandLine(), "***")
	assert.NotContains(t, r.CommandLine(), "hunter2")
}

func TestNewRunnerDockerMode(t *testing.T) {
	cfg := testRunnerConfig()
	cfg.Docker = config.DockerConfig{
		Container:  "virtuoso",
		ISQLPath:   "/opt/virtuoso-opensource/bin/isql",
		DockerPath: "docker",
	}

	r := NewRunner(cfg, nil)
	assert.True(t, strings.HasPrefix(r.CommandLine(), "docker exec -i virtuoso"))
}

func TestRunReportsSpawnFailure(t *testing.T) {
	cfg := testRunnerConfig()
	cfg.Virtuoso.ISQLPath = "/nonexistent/isql-binary"

	r := NewRunner(cfg, nil)
	_, err := r.Run(context.Background(), "status();")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start isql")
}

func TestTTLPLoad(t *testing.T) {
	plain := TTLPLoad("/data/part-001.nq", "http://localhost:8890/DAV/ignored")
	assert.Equal(t,
		"TTLP(file_open('/data/part-001.nq'), '', 'http://localhost:8890/DAV/ignored', 512);",
		plain)

	gz := TTLPLoad("/data/part-001.nq.gz", "http://localhost:8890/DAV/ignored")
	assert.Contains(t, gz, "gz_file_open('/data/part-001.nq.gz')")
}

func TestEscaping(t *testing.T) {
	stmt := FileStat("/data/o'brien.nq")
	assert.Equal(t, "SELECT file_stat('/data/o''brien.nq');", stmt)

	reg := LdDir("/data/it's", "*.nq", "http://g")
	assert.Contains(t, reg, "'/data/it''s'")
}

func TestCheckpointAndRestore(t *testing.T) {
	stmt := CheckpointAndRestore(60, 10)
	assert.Equal(t, "log_enable(3, 1); checkpoint; checkpoint_interval(60); scheduler_interval(10);", stmt)
}

func TestLoadListClear(t *testing.T) {
	stmt := LoadListClear("/data/dump/")
	assert.Equal(t, "DELETE FROM DB.DBA.load_list WHERE ll_file LIKE '/data/dump/%';", stmt)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
		want   Code
	}{
		{"security", "*** Error 42000: SR157: Security violation: cannot open file /x", CodeSecurityViolation},
		{"registration", "*** Error 42000: FA020: Unable to list files in /data", CodeRegistration},
		{"connect", "*** Error 08S01: CL033: Connect failed to localhost:1111", CodeConnect},
		{"file access", "*** Error 39000: FA003: Can't open file /data/missing.nq, error 2", CodeFileAccess},
		{"other sql", "*** Error 37000: SQ074: syntax error", CodeSQL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(Result{OK: false, Stderr: tc.stderr})
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, CodeOK, Classify(Result{OK: true}))
	assert.True(t, CodeSecurityViolation.Unreachable())
	assert.True(t, CodeFileAccess.Unreachable())
	assert.False(t, CodeConnect.Unreachable())
}

func TestErrorLine(t *testing.T) {
	r := Result{Stderr: "Connected to localhost:1111\n*** Error 42000: SR157: Security violation\n"}
	assert.Equal(t, "*** Error 42000: SR157: Security violation", ErrorLine(r))

	blank := Result{Stdout: "\n  something odd\n"}
	assert.Equal(t, "something odd", ErrorLine(blank))
}

const statsOutput = `Connected to localhost:1111
Driver: 07.20.3240 OpenLink Virtuoso ODBC Driver

aggregate  aggregate  aggregate
INTEGER    INTEGER    INTEGER
_______________________________________

12         10         2

1 Rows. -- 3 msec.
`

func TestParseLoadListStats(t *testing.T) {
	stats, err := ParseLoadListStats(statsOutput)
	require.NoError(t, err)
	assert.Equal(t, LoadListStatsRow{Total: 12, Loaded: 10, Issues: 2}, stats)
}

func TestParseLoadListStatsEmptyTable(t *testing.T) {
	out := "0  NULL  NULL\n\n1 Rows. -- 2 msec.\n"
	stats, err := ParseLoadListStats(out)
	require.NoError(t, err)
	assert.Equal(t, LoadListStatsRow{Total: 0, Loaded: 0, Issues: 0}, stats)
}

func TestParseRemaining(t *testing.T) {
	n, err := ParseRemaining("aggregate\nINTEGER\n___\n\n3\n\n1 Rows. -- 1 msec.\n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = ParseRemaining("")
	assert.Error(t, err)
}

func TestParseFailures(t *testing.T) {
	out := `/data/part-007.nq  *** Error 37000: SP029: parse error at line 4
/data/part-009.nq  NULL

2 Rows. -- 5 msec.
`
	failures := ParseFailures(out)
	require.Len(t, failures, 2)
	assert.Equal(t, "/data/part-007.nq", failures[0].File)
	assert.Contains(t, failures[0].Error, "parse error")
	assert.Equal(t, "not loaded", failures[1].Error)
}
