package services

import (
	"fmt"
	"math"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/geo"
)

// NearestNeighborOrder builds a visiting order over stops using greedy
// nearest-neighbor construction from the origin, returning the ordered stops
// and the total tour distance in kilometers (origin->first plus every
// consecutive leg).
//
// The algorithm minimizes the immediate leg at each step. It does not attempt
// global optimization; determinism and simplicity win over optimality for the
// stop counts a single vehicle sees in a day.
//
// Ties on distance are broken by original input order: the first-encountered
// minimal stop wins. Output is always a permutation of the input.
func NearestNeighborOrder(origin domain.Coordinate, stops []domain.Stop) ([]domain.Stop, float64, error) {
	if err := origin.Validate(); err != nil {
		return nil, 0, fmt.Errorf("nearest neighbor: origin: %w", err)
	}

	if len(stops) == 0 {
		return []domain.Stop{}, 0, nil
	}

	remaining := make([]domain.Stop, len(stops))
	copy(remaining, stops)

	ordered := make([]domain.Stop, 0, len(stops))
	current := origin
	total := 0.0

	for len(remaining) > 0 {
		bestIdx := -1
		bestDist := math.MaxFloat64

		// Scan in input order with a strict comparison so the earliest
		// equidistant stop is the deterministic winner.
		for i, s := range remaining {
			d, err := geo.DistanceKm(current, s.Coord)
			if err != nil {
				return nil, 0, fmt.Errorf("nearest neighbor: booking %d: %w", s.BookingID, err)
			}
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}

		next := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		ordered = append(ordered, next)
		total += bestDist
		current = next.Coord
	}

	return ordered, total, nil
}
