package domain

import "time"

// AssignmentStatus is the delivery lifecycle state of a transport assignment.
// Transitions are driven by the status-update endpoint; route optimization
// never changes status, it only rewrites StopOrder.
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusInTransit AssignmentStatus = "in_transit"
	StatusDelivered AssignmentStatus = "delivered"
	StatusSkipped   AssignmentStatus = "skipped"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusSkipped:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor state.
// pending -> in_transit -> delivered, with skipped reachable from pending
// or in_transit. delivered and skipped are terminal.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInTransit || next == StatusSkipped
	case StatusInTransit:
		return next == StatusDelivered || next == StatusSkipped
	}
	return false
}

// TransportAssignment links one booking to one vehicle on one calendar day.
// At most one assignment may exist per (vehicle, booking, date) triple.
//
// Client, Address and Delivery are resolved from the booking record when the
// assignment is read; Pickup, when set, overrides the booking's delivery
// coordinates as the stop location.
type TransportAssignment struct {
	ID            int
	VehicleID     string
	BookingID     int
	TransportDate time.Time
	StopOrder     int
	Status        AssignmentStatus
	DriverNotes   string
	Pickup        *Coordinate

	Client   string
	Address  string
	Delivery *Coordinate
}

// Stop derives the geocoded destination for the assignment. It returns
// ok=false when no usable coordinates exist (missing or invalid); such
// assignments are excluded from optimization but never dropped.
func (a *TransportAssignment) Stop() (Stop, bool) {
	coord := a.Delivery
	if a.Pickup != nil {
		coord = a.Pickup
	}
	if coord == nil || coord.Validate() != nil {
		return Stop{}, false
	}
	return Stop{
		AssignmentID: a.ID,
		BookingID:    a.BookingID,
		Client:       a.Client,
		Address:      a.Address,
		Coord:        *coord,
	}, true
}
