package models

import "errors"

// Sentinel errors returned by the ledger core. None of these are retried
// internally; retry policy for a failed audit write has compliance
// implications that belong to the caller.
var (
	// ErrClockRegression means now() moved behind the previous entry's
	// timestamp. The append is rejected rather than silently backdated.
	ErrClockRegression = errors.New("clock regression: timestamp earlier than previous entry")

	// ErrSerialization means the candidate's details could not be
	// canonically encoded (e.g. a non-finite float or an unsupported Go
	// type). Rejected before any state mutation.
	ErrSerialization = errors.New("details cannot be canonically serialized")

	// ErrEntryNotFound is returned for lookups of sequences the ledger
	// does not hold.
	ErrEntryNotFound = errors.New("entry not found")
)

// Validation errors for append requests.
var (
	ErrMissingActor        = errors.New("actor is required")
	ErrMissingAction       = errors.New("action is required")
	ErrMissingResourceType = errors.New("resource_type is required")
	ErrMissingResourceID   = errors.New("resource_id is required")
)
