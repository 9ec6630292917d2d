package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virtuoso-tools/virtload/errors"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(errors.Wrap(errors.ErrUnreachable, "probe")))
	assert.Equal(t, 1, ExitCode(errors.Wrap(errors.ErrRegistrationFailed, "ld_dir")))
	assert.Equal(t, 2, ExitCode(errors.Wrap(errors.ErrCheckpointFailed, "checkpoint")))
	assert.Equal(t, 130, ExitCode(errors.Wrap(errors.ErrInterrupted, "signal")))
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "load")
	assert.Contains(t, names, "bulk")
	assert.Contains(t, names, "status")
	assert.Contains(t, names, "launch")
	assert.Contains(t, names, "version")

	assert.NotNil(t, root.PersistentFlags().Lookup("json"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}
