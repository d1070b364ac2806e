package ports

import (
	"context"
	"time"

	"fleet-routing-service/internal/domain"
)

// Port: boundary for reading and sequencing transport assignments.
type AssignmentRepository interface {
	// ListAssignments returns all assignments for one vehicle and calendar
	// day, with booking-derived stop fields resolved, ordered by stop_order.
	ListAssignments(ctx context.Context, vehicleID string, date time.Time) ([]*domain.TransportAssignment, error)

	// GetAssignment returns one assignment by id with booking-derived stop
	// fields resolved.
	GetAssignment(ctx context.Context, assignmentID int) (*domain.TransportAssignment, error)

	// UpdateStopOrder writes the visiting position of a single assignment.
	// Route optimization mutates stop_order and nothing else.
	UpdateStopOrder(ctx context.Context, assignmentID int, stopOrder int) error

	// UpdateStatus writes the delivery status of a single assignment.
	// Empty driverNotes leaves any stored notes untouched.
	UpdateStatus(ctx context.Context, assignmentID int, status domain.AssignmentStatus, driverNotes string) error

	// CreateAssignment inserts a new assignment. A conflict on the
	// (vehicle, booking, date) triple returns domain.ErrDuplicateAssignment.
	CreateAssignment(ctx context.Context, a *domain.TransportAssignment) error
}

// Port: read access to vehicle records owned by fleet management.
type VehicleRepository interface {
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
}

// Port: read access to booking line items for cargo aggregation.
type BookingItemRepository interface {
	// ListBookingItems returns every line item across all bookings assigned
	// to the vehicle on the given date.
	ListBookingItems(ctx context.Context, vehicleID string, date time.Time) ([]domain.BookingItem, error)
}
