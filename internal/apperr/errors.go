// Package apperr defines sentinel error kinds shared across service boundaries.
package apperr

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation requires a current
	// user and none could be resolved from the request.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnauthorized is returned when the caller is not the owner of the
	// goal being accessed.
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotFound = errors.New("not found")

	// ErrDateConflict is returned when a candidate date range overlaps a
	// non-archived goal. Always recoverable: retry with different dates.
	ErrDateConflict = errors.New("date conflict")

	// ErrStale is returned when an If-Match checksum no longer matches the
	// stored record (a concurrent write won).
	ErrStale = errors.New("stale checksum")

	ErrInvalidInput = errors.New("invalid input")
)
