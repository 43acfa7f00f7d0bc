// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Application error taxonomy. Every failure surfaced by the core wraps one
// of these sentinels so callers can branch with errors.Is and map each kind
// to a distinct outward signal.
var (
	// ErrNotFound indicates an unknown claim or user id.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates a role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrIllegalTransition indicates an action that is not valid from the
	// claim's current status, including acting on a terminal claim.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrValidation indicates missing or invalid required fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a lost optimistic-concurrency race: the stored
	// claim advanced between read and save. The core never retries this
	// itself; the caller re-fetches and re-decides.
	ErrConflict = errors.New("conflict")
)
