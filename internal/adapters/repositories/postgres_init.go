package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fleet-routing-service/internal/domain"
)

// Initialize the database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		max_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY,
		client_name TEXT NOT NULL,
		street_address TEXT,
		delivery_lat DOUBLE PRECISION,
		delivery_lng DOUBLE PRECISION
	);
	`

	createBookingItemsQuery := `
	CREATE TABLE IF NOT EXISTS booking_items (
		id SERIAL PRIMARY KEY,
		booking_id INTEGER NOT NULL REFERENCES bookings(id),
		name TEXT,
		weight_kg DOUBLE PRECISION,
		volume_m3 DOUBLE PRECISION,
		quantity INTEGER NOT NULL DEFAULT 1
	);
	`

	createAssignmentsQuery := `
	CREATE TABLE IF NOT EXISTS transport_assignments (
		id SERIAL PRIMARY KEY,
		vehicle_id TEXT NOT NULL REFERENCES vehicles(id),
		booking_id INTEGER NOT NULL REFERENCES bookings(id),
		transport_date DATE NOT NULL,
		stop_order INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'in_transit', 'delivered', 'skipped')),
		driver_notes TEXT,
		pickup_lat DOUBLE PRECISION,
		pickup_lng DOUBLE PRECISION,
		UNIQUE (vehicle_id, booking_id, transport_date)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_assignments_vehicle_date
	ON transport_assignments(vehicle_id, transport_date);
	`

	statements := []string{
		createVehiclesQuery,
		createBookingsQuery,
		createBookingItemsQuery,
		createAssignmentsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VehicleSeed struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MaxWeightKg float64 `json:"max_weight_kg"`
	MaxVolumeM3 float64 `json:"max_volume_m3"`
	Active      *bool   `json:"active"`
}

type BookingItemSeed struct {
	Name     string  `json:"name"`
	WeightKg float64 `json:"weight_kg"`
	VolumeM3 float64 `json:"volume_m3"`
	Quantity int     `json:"quantity"`
}

type BookingSeed struct {
	ID            int               `json:"id"`
	ClientName    string            `json:"client_name"`
	StreetAddress string            `json:"street_address"`
	DeliveryLat   *float64          `json:"delivery_lat"`
	DeliveryLng   *float64          `json:"delivery_lng"`
	Items         []BookingItemSeed `json:"items"`
}

type AssignmentSeed struct {
	VehicleID     string `json:"vehicle_id"`
	BookingID     int    `json:"booking_id"`
	TransportDate string `json:"transport_date"`
	StopOrder     int    `json:"stop_order"`
}

type FleetSeed struct {
	Vehicles    []VehicleSeed    `json:"vehicles"`
	Bookings    []BookingSeed    `json:"bookings"`
	Assignments []AssignmentSeed `json:"assignments"`
}

// SeedFromJSON populates vehicles, bookings and line items from a JSON file
// and returns the assignment seeds for insertion through the repository (so
// duplicate (vehicle, booking, date) rows are detected, not upserted).
func SeedFromJSON(db *sql.DB, jsonPath string) ([]domain.TransportAssignment, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var seed FleetSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("seed fleet: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	vehicleStmt, err := tx.Prepare(`
	INSERT INTO vehicles (id, name, max_weight_kg, max_volume_m3, active)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		max_weight_kg = EXCLUDED.max_weight_kg,
		max_volume_m3 = EXCLUDED.max_volume_m3,
		active = EXCLUDED.active;
	`)
	if err != nil {
		return nil, fmt.Errorf("seed fleet: prepare vehicle insert: %w", err)
	}
	defer vehicleStmt.Close()

	for i, v := range seed.Vehicles {
		if strings.TrimSpace(v.ID) == "" {
			return nil, fmt.Errorf("seed fleet: vehicle at index %d: id cannot be empty", i+1)
		}
		active := true
		if v.Active != nil {
			active = *v.Active
		}
		if _, err := vehicleStmt.Exec(v.ID, v.Name, v.MaxWeightKg, v.MaxVolumeM3, active); err != nil {
			return nil, fmt.Errorf("seed fleet: insert vehicle %q: %w", v.ID, err)
		}
	}

	bookingStmt, err := tx.Prepare(`
	INSERT INTO bookings (id, client_name, street_address, delivery_lat, delivery_lng)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET client_name = EXCLUDED.client_name,
		street_address = EXCLUDED.street_address,
		delivery_lat = EXCLUDED.delivery_lat,
		delivery_lng = EXCLUDED.delivery_lng;
	`)
	if err != nil {
		return nil, fmt.Errorf("seed fleet: prepare booking insert: %w", err)
	}
	defer bookingStmt.Close()

	itemStmt, err := tx.Prepare(`
	INSERT INTO booking_items (booking_id, name, weight_kg, volume_m3, quantity)
	VALUES ($1, NULLIF($2, ''), $3, $4, $5);
	`)
	if err != nil {
		return nil, fmt.Errorf("seed fleet: prepare item insert: %w", err)
	}
	defer itemStmt.Close()

	for i, b := range seed.Bookings {
		if b.ID <= 0 {
			return nil, fmt.Errorf("seed fleet: booking at index %d: invalid id %d", i+1, b.ID)
		}
		if strings.TrimSpace(b.ClientName) == "" {
			return nil, fmt.Errorf("seed fleet: booking %d: client_name cannot be empty", b.ID)
		}
		if _, err := bookingStmt.Exec(b.ID, b.ClientName, b.StreetAddress, b.DeliveryLat, b.DeliveryLng); err != nil {
			return nil, fmt.Errorf("seed fleet: insert booking %d: %w", b.ID, err)
		}
		for _, it := range b.Items {
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			if _, err := itemStmt.Exec(b.ID, it.Name, it.WeightKg, it.VolumeM3, qty); err != nil {
				return nil, fmt.Errorf("seed fleet: insert item for booking %d: %w", b.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	assignments := make([]domain.TransportAssignment, 0, len(seed.Assignments))
	for i, a := range seed.Assignments {
		date, err := time.Parse("2006-01-02", a.TransportDate)
		if err != nil {
			return nil, fmt.Errorf("seed fleet: assignment at index %d: parse date %q: %w", i+1, a.TransportDate, err)
		}
		assignments = append(assignments, domain.TransportAssignment{
			VehicleID:     a.VehicleID,
			BookingID:     a.BookingID,
			TransportDate: date,
			StopOrder:     a.StopOrder,
			Status:        domain.StatusPending,
		})
	}

	return assignments, nil
}
