// Package isql issues commands to a Virtuoso server through the isql
// command-line client, either directly or via docker exec.
package isql

import (
	"bytes"
	"context"
	"os/exec"
	"slices"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/config"
	"github.com/virtuoso-tools/virtload/errors"
)

// Result is the outcome of one isql invocation. OK reflects the process
// exit status; stderr carries Virtuoso's error text when OK is false.
type Result struct {
	OK     bool
	Stdout string
	Stderr string
}

// Runner executes one SQL statement batch against the destination server.
// Implementations must be safe for concurrent use: each Run owns its own
// external process, so workers never share in-process state.
type Runner interface {
	Run(ctx context.Context, sqlText string) (Result, error)
}

// ExecRunner runs isql as a subprocess. In docker mode the client runs
// inside the container, so file paths in SQL are container paths.
type ExecRunner struct {
	argvPrefix []string // argv up to, but not including, the EXEC= argument
	display    string   // pre-quoted command line with password redacted
	log        *zap.SugaredLogger
}

// NewRunner builds a runner from the configuration. extraArgs are appended
// to the isql invocation verbatim (already split, e.g. via shellquote).
func NewRunner(cfg *config.Config, log *zap.SugaredLogger, extraArgs ...string) *ExecRunner {
	var argv []string
	if cfg.Docker.Enabled() {
		argv = append(argv, cfg.Docker.DockerPath, "exec", "-i", cfg.Docker.Container, cfg.Docker.ISQLPath)
	} else {
		argv = append(argv, cfg.Virtuoso.ISQLPath)
	}
	argv = append(argv, cfg.Virtuoso.Address(), cfg.Virtuoso.User, cfg.Virtuoso.Password)
	argv = append(argv, extraArgs...)

	redacted := slices.Clone(argv)
	for i, a := range redacted {
		if a == cfg.Virtuoso.Password {
			redacted[i] = "***"
		}
	}

	return &ExecRunner{
		argvPrefix: argv,
		display:    shellquote.Join(redacted...),
		log:        log,
	}
}

// Run executes sqlText through isql's EXEC= form. A non-zero exit status is
// not an error: it produces Result.OK == false with stderr populated. The
// returned error is reserved for failures to start the process at all.
// Cancelling ctx kills the subprocess.
func (r *ExecRunner) Run(ctx context.Context, sqlText string) (Result, error) {
	argv := append(slices.Clone(r.argvPrefix), "EXEC="+sqlText)

	if r.log != nil {
		r.log.Debugw("Running isql command", "cmd", r.display, "sql", sqlText)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, nil // isql ran and reported failure via exit status
		}
		if ctx.Err() != nil {
			return result, errors.Wrap(ctx.Err(), "isql command cancelled")
		}
		return result, errors.Wrapf(err, "failed to start isql (%s)", argv[0])
	}

	result.OK = true
	return result, nil
}

// CommandLine returns the redacted invocation for display
func (r *ExecRunner) CommandLine() string {
	return r.display
}
