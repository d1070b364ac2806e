package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-routing-service/internal/domain"
)

// Postgres-backed implementation of the VehicleRepository port.
type PostgresVehicleRepository struct{ DB *sql.DB }

func NewPostgresVehicleRepository(db *sql.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{DB: db}
}

func (r *PostgresVehicleRepository) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if r.DB == nil {
		return nil, errors.New("vehicle repository: DB is nil")
	}

	query := `
	SELECT id, name, max_weight_kg, max_volume_m3, active
	FROM vehicles
	WHERE id = $1;
	`

	var v domain.Vehicle
	err := r.DB.QueryRowContext(ctx, query, vehicleID).Scan(
		&v.ID, &v.Name, &v.MaxWeightKg, &v.MaxVolumeM3, &v.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vehicle %q: %w", vehicleID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %q: %w", vehicleID, err)
	}

	return &v, nil
}

// Postgres-backed implementation of the BookingItemRepository port.
type PostgresBookingItemRepository struct{ DB *sql.DB }

func NewPostgresBookingItemRepository(db *sql.DB) *PostgresBookingItemRepository {
	return &PostgresBookingItemRepository{DB: db}
}

// ListBookingItems returns every line item of every booking assigned to the
// vehicle on the given date. Missing weight/volume columns read as zero.
func (r *PostgresBookingItemRepository) ListBookingItems(
	ctx context.Context,
	vehicleID string,
	date time.Time,
) ([]domain.BookingItem, error) {
	if r.DB == nil {
		return nil, errors.New("booking item repository: DB is nil")
	}

	query := `
	SELECT
		i.booking_id,
		COALESCE(i.name, ''),
		COALESCE(i.weight_kg, 0),
		COALESCE(i.volume_m3, 0),
		i.quantity
	FROM booking_items i
	JOIN transport_assignments a ON a.booking_id = i.booking_id
	WHERE a.vehicle_id = $1
		AND a.transport_date = $2
	ORDER BY i.booking_id, i.id;
	`

	rows, err := r.DB.QueryContext(ctx, query, vehicleID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list booking items: query: %w", err)
	}
	defer rows.Close()

	items := make([]domain.BookingItem, 0, 32)
	for rows.Next() {
		var it domain.BookingItem
		if err := rows.Scan(&it.BookingID, &it.Name, &it.WeightKg, &it.VolumeM3, &it.Quantity); err != nil {
			return nil, fmt.Errorf("list booking items: scan row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list booking items: row iteration: %w", err)
	}

	return items, nil
}
