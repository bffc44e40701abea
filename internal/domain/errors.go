package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (missing required field, coordinate out of range, bad rating).
// Handlers map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation collides with existing state:
// a second active trip, a duplicate traveler name, or a status change out
// of a terminal state. Handlers map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrStorage wraps unexpected persistence failures. Handlers map this to
// HTTP 500 with a generic body; the underlying detail is only logged.
var ErrStorage = errors.New("storage error")
