package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
)

const pgUniqueViolation = "23505"

// Postgres-backed implementation of the AssignmentRepository port.
type PostgresAssignmentRepository struct{ DB *sql.DB }

func NewPostgresAssignmentRepository(db *sql.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{DB: db}
}

// ListAssignments returns the vehicle's assignments for one day with
// booking-derived stop fields resolved, ordered by stored stop_order.
func (r *PostgresAssignmentRepository) ListAssignments(
	ctx context.Context,
	vehicleID string,
	date time.Time,
) (_ []*domain.TransportAssignment, err error) {
	defer obs.Time(ctx, "assignments.List")(&err)

	if r.DB == nil {
		return nil, errors.New("assignment repository: DB is nil")
	}

	query := `
	SELECT
		a.id,
		a.vehicle_id,
		a.booking_id,
		a.transport_date,
		a.stop_order,
		a.status,
		COALESCE(a.driver_notes, ''),
		a.pickup_lat,
		a.pickup_lng,
		b.client_name,
		COALESCE(b.street_address, ''),
		b.delivery_lat,
		b.delivery_lng
	FROM transport_assignments a
	JOIN bookings b ON b.id = a.booking_id
	WHERE a.vehicle_id = $1
		AND a.transport_date = $2
	ORDER BY a.stop_order, a.id;
	`

	rows, err := r.DB.QueryContext(ctx, query, vehicleID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list assignments: query: %w", err)
	}
	defer rows.Close()

	assignments := make([]*domain.TransportAssignment, 0, 32)
	for rows.Next() {
		var (
			a                    domain.TransportAssignment
			status               string
			pickupLat, pickupLng sql.NullFloat64
			delLat, delLng       sql.NullFloat64
		)
		err := rows.Scan(
			&a.ID, &a.VehicleID, &a.BookingID, &a.TransportDate, &a.StopOrder,
			&status, &a.DriverNotes, &pickupLat, &pickupLng,
			&a.Client, &a.Address, &delLat, &delLng,
		)
		if err != nil {
			return nil, fmt.Errorf("list assignments: scan row: %w", err)
		}

		a.Status = domain.AssignmentStatus(status)
		a.Pickup = coordFromNullable(pickupLat, pickupLng)
		a.Delivery = coordFromNullable(delLat, delLng)

		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: row iteration: %w", err)
	}

	return assignments, nil
}

// GetAssignment returns one assignment by id with booking-derived stop
// fields resolved.
func (r *PostgresAssignmentRepository) GetAssignment(ctx context.Context, assignmentID int) (*domain.TransportAssignment, error) {
	if r.DB == nil {
		return nil, errors.New("assignment repository: DB is nil")
	}

	query := `
	SELECT
		a.id,
		a.vehicle_id,
		a.booking_id,
		a.transport_date,
		a.stop_order,
		a.status,
		COALESCE(a.driver_notes, ''),
		a.pickup_lat,
		a.pickup_lng,
		b.client_name,
		COALESCE(b.street_address, ''),
		b.delivery_lat,
		b.delivery_lng
	FROM transport_assignments a
	JOIN bookings b ON b.id = a.booking_id
	WHERE a.id = $1;
	`

	var (
		a                    domain.TransportAssignment
		status               string
		pickupLat, pickupLng sql.NullFloat64
		delLat, delLng       sql.NullFloat64
	)
	err := r.DB.QueryRowContext(ctx, query, assignmentID).Scan(
		&a.ID, &a.VehicleID, &a.BookingID, &a.TransportDate, &a.StopOrder,
		&status, &a.DriverNotes, &pickupLat, &pickupLng,
		&a.Client, &a.Address, &delLat, &delLng,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}

	a.Status = domain.AssignmentStatus(status)
	a.Pickup = coordFromNullable(pickupLat, pickupLng)
	a.Delivery = coordFromNullable(delLat, delLng)

	return &a, nil
}

// UpdateStopOrder rewrites the visiting position of one assignment.
func (r *PostgresAssignmentRepository) UpdateStopOrder(ctx context.Context, assignmentID int, stopOrder int) error {
	if r.DB == nil {
		return errors.New("assignment repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE transport_assignments SET stop_order = $1 WHERE id = $2;`,
		stopOrder, assignmentID,
	)
	if err != nil {
		return fmt.Errorf("update stop order: assignment %d: %w", assignmentID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stop order: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update stop order: assignment %d: %w", assignmentID, domain.ErrNotFound)
	}

	return nil
}

// UpdateStatus rewrites the delivery status of one assignment. Empty notes
// keep whatever is already stored.
func (r *PostgresAssignmentRepository) UpdateStatus(
	ctx context.Context,
	assignmentID int,
	status domain.AssignmentStatus,
	driverNotes string,
) error {
	if r.DB == nil {
		return errors.New("assignment repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE transport_assignments
		SET status = $1, driver_notes = COALESCE(NULLIF($2, ''), driver_notes)
		WHERE id = $3;`,
		string(status), driverNotes, assignmentID,
	)
	if err != nil {
		return fmt.Errorf("update status: assignment %d: %w", assignmentID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update status: assignment %d: %w", assignmentID, domain.ErrNotFound)
	}

	return nil
}

// CreateAssignment inserts one assignment row. A conflict on the
// (vehicle, booking, date) unique constraint maps to ErrDuplicateAssignment
// so callers can tell it apart from other write failures.
func (r *PostgresAssignmentRepository) CreateAssignment(ctx context.Context, a *domain.TransportAssignment) error {
	if r.DB == nil {
		return errors.New("assignment repository: DB is nil")
	}

	status := a.Status
	if status == "" {
		status = domain.StatusPending
	}

	var pickupLat, pickupLng sql.NullFloat64
	if a.Pickup != nil {
		pickupLat = sql.NullFloat64{Float64: a.Pickup.Lat, Valid: true}
		pickupLng = sql.NullFloat64{Float64: a.Pickup.Lng, Valid: true}
	}

	query := `
	INSERT INTO transport_assignments
		(vehicle_id, booking_id, transport_date, stop_order, status, driver_notes, pickup_lat, pickup_lng)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	RETURNING id;
	`

	err := r.DB.QueryRowContext(ctx, query,
		a.VehicleID, a.BookingID, a.TransportDate.Format("2006-01-02"),
		a.StopOrder, string(status), a.DriverNotes, pickupLat, pickupLng,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("create assignment: vehicle=%s booking=%d date=%s: %w",
				a.VehicleID, a.BookingID, a.TransportDate.Format("2006-01-02"), domain.ErrDuplicateAssignment)
		}
		return fmt.Errorf("create assignment: %w", err)
	}

	return nil
}

func coordFromNullable(lat, lng sql.NullFloat64) *domain.Coordinate {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
}
