package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, blank line color).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with existing data: a duplicate
// station or line name, or deleting a station that a line still runs through.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// The section errors below are returned by Sections when a requested change
// would break the single-path shape of a line. Callers branch on them with
// errors.Is; each is wrapped with a short reason.
var (
	// ErrInvalidSection: the new section is redundant (both stations already
	// on the line), disconnected (neither station on the line), or a self-loop.
	ErrInvalidSection = errors.New("invalid section")

	// ErrInvalidDistance: the distance is not positive, or a split would not
	// leave a strictly positive remainder.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidRemoval: the line has a single section, or the station is not on it.
	ErrInvalidRemoval = errors.New("invalid removal")
)
