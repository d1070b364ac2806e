package domain

import "errors"

// Sentinel errors shared across the module. Callers classify failures with
// errors.Is rather than string matching.
var (
	// ErrValidation marks caller input problems (missing vehicle id, bad date).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCoordinate marks NaN or out-of-range latitude/longitude values.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrNotFound marks a missing vehicle or assignment row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAssignment marks a uniqueness conflict on the
	// (vehicle, booking, transport date) triple. It is reported distinctly
	// from other write failures.
	ErrDuplicateAssignment = errors.New("assignment already exists for vehicle, booking and date")
)
