package audit

import "errors"

// ErrConsistencyViolation is returned when an identity or event payload
// references a user, group or entity that cannot be found. The event is not
// audited.
var ErrConsistencyViolation = errors.New("audit consistency violation")

// ErrSinkFailure wraps errors returned by a Sink
var ErrSinkFailure = errors.New("audit sink failure")

// ErrInvalidEntry is returned for entries that break the entry invariants
var ErrInvalidEntry = errors.New("invalid audit entry")

// ErrUnexpectedPayload is returned when a raised payload doesn't match its kind
var ErrUnexpectedPayload = errors.New("unexpected event payload")

// ErrAlreadyRegistered is returned by a second Router.Register
var ErrAlreadyRegistered = errors.New("audit router already registered")

// errSkipped marks an event deliberately left unaudited
var errSkipped = errors.New("skipped by policy")
