// Package errors provides error handling for virtload.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check that the directory is in DirsAllowed")
//
//	// Check errors
//	if errors.Is(err, errors.ErrCheckpointFailed) {
//	    // handle durability-critical failure
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors for the run-level failure classes. Use these with
// errors.Is() to select exit behavior; wrap them with errors.Wrap() to add
// context while preserving the class.
var (
	// ErrNoFiles indicates discovery matched nothing. Informational: the run
	// ends successfully with no work performed.
	ErrNoFiles = New("no files matched")

	// ErrUnreachable indicates the destination server cannot read the data
	// files. Fatal before any registration happens.
	ErrUnreachable = New("destination cannot access data files")

	// ErrRegistrationFailed indicates the work queue could not be populated.
	// Fatal before any worker starts.
	ErrRegistrationFailed = New("registration failed")

	// ErrCheckpointFailed indicates the final durability commit failed.
	// Critical: item loads reported as successful may not be durable.
	ErrCheckpointFailed = New("checkpoint failed")

	// ErrInterrupted indicates the run was cancelled before draining
	// completed cleanly. The checkpoint step is skipped in this case.
	ErrInterrupted = New("run interrupted")
)

// IsCritical reports whether err belongs to the durability-risk failure
// class, which must be surfaced distinctly from ordinary load failures.
func IsCritical(err error) bool {
	return err != nil && Is(err, ErrCheckpointFailed)
}

// IsInterrupted reports whether err is or wraps ErrInterrupted.
func IsInterrupted(err error) bool {
	return err != nil && Is(err, ErrInterrupted)
}
