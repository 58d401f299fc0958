package model

import "errors"

// Sentinel error kinds shared across layers. Concrete errors wrap one of these
// so that callers can classify failures with errors.Is.
var (
	// ErrConfiguration marks an unknown formula/data selection or invalid round bounds.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks malformed or inconsistent competition data.
	ErrValidation = errors.New("validation error")
	// ErrComputation marks a scoring defect such as a non-finite delta.
	ErrComputation = errors.New("computation error")
	// ErrNotFound is returned by lookups without a matching record.
	ErrNotFound = errors.New("not found")
)
