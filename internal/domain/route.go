package domain

import "time"

// Stop is the geocoded destination for one transport assignment.
// Derived data, never persisted.
type Stop struct {
	AssignmentID int
	BookingID    int
	Client       string
	Address      string
	Coord        Coordinate
}

// RouteStop is a stop with its 1-based position in the final visiting order.
type RouteStop struct {
	Sequence int
	Stop
}

// WriteFailure records one stop_order write that failed during persistence.
// Writes are best-effort: a failed row never blocks the remaining rows, but
// the failure is surfaced to the caller instead of being swallowed.
type WriteFailure struct {
	AssignmentID int
	Reason       string
}

// RouteResult is the outcome of optimizing one vehicle's stops for one day.
// It is planning output only and is not persisted as a whole; the per-stop
// sequence numbers are written back to the assignments.
type RouteResult struct {
	VehicleID        string
	TransportDate    time.Time
	Stops            []RouteStop
	TotalDistanceKm  float64
	TotalDurationMin float64

	// UsedExternalProvider is true when the external routing service
	// produced the order and totals, false when the local heuristic did.
	UsedExternalProvider bool

	// ExcludedAssignmentIDs lists assignments without usable coordinates.
	// They keep their prior stop_order and are reported, not dropped.
	ExcludedAssignmentIDs []int

	WriteFailures []WriteFailure
}

// OrderedBookingIDs returns booking ids in visiting order.
func (r *RouteResult) OrderedBookingIDs() []int {
	ids := make([]int, 0, len(r.Stops))
	for _, s := range r.Stops {
		ids = append(ids, s.BookingID)
	}
	return ids
}
