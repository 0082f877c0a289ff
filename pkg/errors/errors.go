// Package errors provides common domain error types for the nojoin engine.
//
// It defines sentinel errors for conditions like "not found" or "conflict"
// that are shared across packages, so callers can use consistent
// errors.Is() checks instead of matching on error strings.
//
// Usage:
//
//	import njerrors "github.com/Valtora/nojoin/pkg/errors"
//
//	// Return a domain error
//	return nil, njerrors.ErrNotFound
//
//	// Check for domain errors
//	if njerrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrRewriteFailed indicates a transcript label rewrite made no changes
	// where at least one was expected. Identity operations treat this as a
	// hard abort so records and transcript text never diverge.
	ErrRewriteFailed = errors.New("transcript rewrite failed")

	// ErrPipelineBusy indicates another processing pipeline run already
	// holds the installation-wide single-flight lock.
	ErrPipelineBusy = errors.New("pipeline already running")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether any error in err's chain is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAlreadyExists reports whether any error in err's chain is ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsRewriteFailed reports whether any error in err's chain is ErrRewriteFailed.
func IsRewriteFailed(err error) bool {
	return errors.Is(err, ErrRewriteFailed)
}

// IsPipelineBusy reports whether any error in err's chain is ErrPipelineBusy.
func IsPipelineBusy(err error) bool {
	return errors.Is(err, ErrPipelineBusy)
}
