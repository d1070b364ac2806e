package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/domain"
)

func TestAggregateLoad(t *testing.T) {
	items := []domain.BookingItem{
		{BookingID: 1, WeightKg: 12.5, VolumeM3: 0.4, Quantity: 2},
		{BookingID: 1, WeightKg: 3, VolumeM3: 0.1, Quantity: 1},
		{BookingID: 2, WeightKg: 0, VolumeM3: 0, Quantity: 5}, // missing weight/volume read as zero
	}

	load := AggregateLoad(items)
	if math.Abs(load.TotalWeightKg-28) > 1e-9 {
		t.Errorf("weight = %v, want 28", load.TotalWeightKg)
	}
	if math.Abs(load.TotalVolumeM3-0.9) > 1e-9 {
		t.Errorf("volume = %v, want 0.9", load.TotalVolumeM3)
	}

	empty := AggregateLoad(nil)
	if empty.TotalWeightKg != 0 || empty.TotalVolumeM3 != 0 {
		t.Errorf("empty aggregation = %+v, want zero", empty)
	}
}

func TestVehicleLoadReport(t *testing.T) {
	store := repositories.NewMemoryStore()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	store.PutVehicle(domain.Vehicle{ID: "VH-1", Name: "North loop", MaxWeightKg: 30, MaxVolumeM3: 2, Active: true})
	store.PutBookingItems("VH-1", date,
		domain.BookingItem{BookingID: 1, WeightKg: 20, VolumeM3: 0.5, Quantity: 1},
		domain.BookingItem{BookingID: 2, WeightKg: 15, VolumeM3: 0.5, Quantity: 1},
	)

	report, err := VehicleLoad(context.Background(), store, store, "VH-1", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Load.TotalWeightKg != 35 {
		t.Errorf("weight = %v, want 35", report.Load.TotalWeightKg)
	}
	if !report.OverWeight {
		t.Error("35 kg against a 30 kg capacity must flag OverWeight")
	}
	if report.OverVolume {
		t.Error("1.0 m3 against a 2 m3 capacity must not flag OverVolume")
	}
}

func TestVehicleLoadValidation(t *testing.T) {
	store := repositories.NewMemoryStore()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	if _, err := VehicleLoad(context.Background(), store, store, "", date); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing vehicle id: err = %v, want ErrValidation", err)
	}
	if _, err := VehicleLoad(context.Background(), store, store, "VH-1", time.Time{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero date: err = %v, want ErrValidation", err)
	}

	// Unknown vehicle surfaces as not found, distinct from validation.
	if _, err := VehicleLoad(context.Background(), store, store, "VH-404", date); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown vehicle: err = %v, want ErrNotFound", err)
	}
}
