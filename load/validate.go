package load

import (
	"context"

	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// ValidateReachable probes the server before any state is touched, so an
// unreachable server fails fast instead of after discovery and bookkeeping.
func ValidateReachable(ctx context.Context, runner isql.Runner) error {
	result, err := runner.Run(ctx, isql.ServerStatus())
	if err != nil {
		return errors.Wrapf(errors.ErrUnreachable, "could not run isql: %v", err)
	}
	if !result.OK {
		return errors.WithHint(
			errors.Wrapf(errors.ErrUnreachable, "server status probe failed: %s", isql.ErrorLine(result)),
			"check host, port and credentials; is the server running?")
	}
	return nil
}

// ValidateAccess probes whether the server process can read a file before
// any work is registered. The probe catches the two setup mistakes that
// would otherwise fail every single item: paths outside DirsAllowed and
// paths that only exist on the client's side of a container boundary.
func ValidateAccess(ctx context.Context, runner isql.Runner, path string) error {
	result, err := runner.Run(ctx, isql.FileStat(path))
	if err != nil {
		return errors.Wrapf(errors.ErrUnreachable, "could not run isql: %v", err)
	}
	if result.OK {
		return nil
	}

	base := errors.Wrapf(errors.ErrUnreachable,
		"server cannot access %s: %s", path, isql.ErrorLine(result))
	switch isql.Classify(result) {
	case isql.CodeSecurityViolation:
		return errors.WithHint(base,
			"add the data directory to DirsAllowed in virtuoso.ini and restart the server")
	case isql.CodeFileAccess:
		return errors.WithHint(base,
			"paths must be readable by the server process; with Docker, use container paths")
	default:
		return base
	}
}
