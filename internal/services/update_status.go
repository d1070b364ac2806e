package services

import (
	"context"
	"fmt"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

// UpdateAssignmentStatus moves one assignment through the delivery lifecycle
// and returns the updated record. Illegal target states and illegal
// transitions are validation errors; the assignment itself is never mutated
// on failure.
func UpdateAssignmentStatus(
	ctx context.Context,
	repo ports.AssignmentRepository,
	assignmentID int,
	next domain.AssignmentStatus,
	driverNotes string,
) (*domain.TransportAssignment, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("update assignment status: unknown status %q: %w", next, domain.ErrValidation)
	}

	a, err := repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("update assignment status: %w", err)
	}

	if !a.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("update assignment status: %s -> %s is not allowed: %w",
			a.Status, next, domain.ErrValidation)
	}

	if err := repo.UpdateStatus(ctx, assignmentID, next, driverNotes); err != nil {
		return nil, fmt.Errorf("update assignment status: %w", err)
	}

	a.Status = next
	if driverNotes != "" {
		a.DriverNotes = driverNotes
	}
	return a, nil
}
