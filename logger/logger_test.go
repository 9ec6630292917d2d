package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitializeConsole(t *testing.T) {
	require.NoError(t, Initialize(false, 0))
	require.NotNil(t, Logger)
	assert.False(t, JSONOutput)

	// Must not panic
	Infow("loader started", "workers", 4)
	Cleanup()
}

func TestInitializeJSON(t *testing.T) {
	require.NoError(t, Initialize(true, 1))
	assert.True(t, JSONOutput)
	Debugw("debug enabled at verbosity 1")
	Cleanup()
}

func TestCompactEncoderEntry(t *testing.T) {
	enc := newCompactEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2026, 3, 14, 13, 4, 35, 0, time.UTC),
		LoggerName: "dispatcher",
		Message:    "worker claimed item",
	}
	fields := []zapcore.Field{
		zap.Int("worker_id", 2),
		zap.String("path", "/data/rdf/part-007.nq.gz"),
		zap.Duration("took", 1500*time.Millisecond),
	}

	buf, err := enc.EncodeEntry(entry, fields)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "13:04:35")
	assert.Contains(t, out, "dispatcher")
	assert.Contains(t, out, "worker claimed item")
	assert.Contains(t, out, "worker_id=")
	assert.Contains(t, out, "/data/rdf/part-007.nq.gz")
	assert.Contains(t, out, "1.5s")
	// INFO level marker is suppressed in compact output
	assert.NotContains(t, out, "INFO")
}

func TestCompactEncoderShowsWarnLevel(t *testing.T) {
	enc := newCompactEncoder()

	entry := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Time:    time.Now(),
		Message: "log_enable(2) failed, continuing with full logging",
	}
	buf, err := enc.EncodeEntry(entry, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "WARN")
}
