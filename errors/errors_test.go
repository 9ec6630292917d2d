package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virtuoso-tools/virtload/errors"
)

func TestSentinelClassesSurviveWrapping(t *testing.T) {
	err := errors.Wrap(errors.ErrRegistrationFailed, "ld_dir('/data/rdf', '*.nq', ...)")
	err = errors.Wrap(err, "bulk registration")

	assert.True(t, errors.Is(err, errors.ErrRegistrationFailed))
	assert.False(t, errors.Is(err, errors.ErrCheckpointFailed))
}

func TestIsCritical(t *testing.T) {
	plain := errors.New("isql exited with status 1")
	assert.False(t, errors.IsCritical(plain))
	assert.False(t, errors.IsCritical(nil))

	critical := errors.Wrap(errors.ErrCheckpointFailed, "final checkpoint")
	assert.True(t, errors.IsCritical(critical))
}

func TestHintsCarryCallToAction(t *testing.T) {
	err := errors.WithHint(
		errors.Wrap(errors.ErrCheckpointFailed, "log_enable(3,1); checkpoint;"),
		"Run 'checkpoint;' in isql immediately and verify data",
	)

	hints := errors.GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "checkpoint;")
	assert.True(t, errors.IsCritical(err))
}

func TestIsInterrupted(t *testing.T) {
	err := errors.Wrap(errors.ErrInterrupted, "drain timed out with 2 workers alive")
	assert.True(t, errors.IsInterrupted(err))
	assert.False(t, errors.IsInterrupted(errors.New("other")))
}
