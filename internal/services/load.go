package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

// AggregateLoad sums weight and volume across every line item. Missing weight
// or volume values arrive as zero from the repository and contribute nothing.
func AggregateLoad(items []domain.BookingItem) domain.CargoLoad {
	var load domain.CargoLoad
	for _, it := range items {
		qty := float64(it.Quantity)
		if qty < 0 {
			qty = 0
		}
		load.TotalWeightKg += it.WeightKg * qty
		load.TotalVolumeM3 += it.VolumeM3 * qty
	}
	return load
}

// VehicleLoad aggregates the cargo assigned to a vehicle on a date and pairs
// it with the vehicle's capacity. The over-capacity flags are informational;
// nothing here rejects or reorders work because of them.
//
// Vehicle and line-item reads are independent and fetched concurrently.
func VehicleLoad(
	ctx context.Context,
	vehicles ports.VehicleRepository,
	items ports.BookingItemRepository,
	vehicleID string,
	date time.Time,
) (*domain.LoadReport, error) {
	if vehicleID == "" {
		return nil, fmt.Errorf("vehicle load: vehicle id is required: %w", domain.ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("vehicle load: transport date is required: %w", domain.ErrValidation)
	}

	var (
		vehicle *domain.Vehicle
		lines   []domain.BookingItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := vehicles.GetVehicle(gctx, vehicleID)
		if err != nil {
			return fmt.Errorf("vehicle load: get vehicle %q: %w", vehicleID, err)
		}
		vehicle = v
		return nil
	})
	g.Go(func() error {
		ls, err := items.ListBookingItems(gctx, vehicleID, date)
		if err != nil {
			return fmt.Errorf("vehicle load: list booking items: %w", err)
		}
		lines = ls
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	load := AggregateLoad(lines)
	return &domain.LoadReport{
		Vehicle:    *vehicle,
		Load:       load,
		OverWeight: vehicle.MaxWeightKg > 0 && load.TotalWeightKg > vehicle.MaxWeightKg,
		OverVolume: vehicle.MaxVolumeM3 > 0 && load.TotalVolumeM3 > vehicle.MaxVolumeM3,
	}, nil
}
