package ports

import (
	"context"

	"fleet-routing-service/internal/domain"
)

// RouteEstimate is an ordered tour with its total travel cost.
type RouteEstimate struct {
	Stops       []domain.Stop
	DistanceKm  float64
	DurationMin float64
}

// RouteProvider orders a set of stops from an origin and reports the total
// route distance and duration.
//
// Implementations return an error for any failure (network, bad payload,
// timeout); they never panic. The orchestrator treats every error as
// non-fatal and falls back to the local heuristic.
type RouteProvider interface {
	OptimizeRoute(ctx context.Context, origin domain.Coordinate, stops []domain.Stop) (RouteEstimate, error)
}
