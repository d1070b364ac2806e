package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/geo"
	"fleet-routing-service/internal/ports"
)

// OptimizerConfig carries the tunables the orchestrator needs. Nothing here
// is a compiled-in business constant; the composition root reads them from
// configuration.
type OptimizerConfig struct {
	// DefaultOrigin is the depot coordinate used when a request supplies no
	// start point.
	DefaultOrigin domain.Coordinate

	// AvgSpeedKmh and StopDwellMin feed the duration estimate on the local
	// heuristic path.
	AvgSpeedKmh  float64
	StopDwellMin float64

	// ProviderTimeout bounds the external routing call so a hung provider
	// cannot stall the request. A deadline hit is an ordinary provider
	// failure.
	ProviderTimeout time.Duration
}

// OptimizeRequest identifies one vehicle-day and an optional start point.
type OptimizeRequest struct {
	VehicleID     string
	TransportDate time.Time
	Origin        *domain.Coordinate
}

// StopOptimizer runs the "optimize vehicle X's stops for date Y" use case:
// load assignments, pick the external provider or the local heuristic,
// persist the resulting order and report totals.
type StopOptimizer struct {
	repo     ports.AssignmentRepository
	provider ports.RouteProvider // nil when no provider is configured
	cfg      OptimizerConfig
	locks    keyedMutex
}

func NewStopOptimizer(repo ports.AssignmentRepository, provider ports.RouteProvider, cfg OptimizerConfig) *StopOptimizer {
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = 40
	}
	if cfg.StopDwellMin < 0 {
		cfg.StopDwellMin = 0
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 10 * time.Second
	}
	return &StopOptimizer{repo: repo, provider: provider, cfg: cfg}
}

// Optimize orders the vehicle's stops for the given day and writes the
// resulting 1-based stop_order back to each assignment.
//
// Degraded conditions (provider failure, assignments without coordinates,
// individual write failures) are reported inside the result, not as errors;
// only validation and repository read failures abort the request.
func (o *StopOptimizer) Optimize(ctx context.Context, req OptimizeRequest) (*domain.RouteResult, error) {
	if req.VehicleID == "" {
		return nil, fmt.Errorf("optimize stops: vehicle id is required: %w", domain.ErrValidation)
	}
	if req.TransportDate.IsZero() {
		return nil, fmt.Errorf("optimize stops: transport date is required: %w", domain.ErrValidation)
	}

	origin := o.cfg.DefaultOrigin
	if req.Origin != nil {
		if err := req.Origin.Validate(); err != nil {
			return nil, fmt.Errorf("optimize stops: start point: %w (%w)", err, domain.ErrValidation)
		}
		origin = *req.Origin
	}

	// Concurrent requests for the same vehicle-day must not interleave
	// their stop_order writes.
	unlock := o.locks.Lock(req.VehicleID + "|" + req.TransportDate.Format("2006-01-02"))
	defer unlock()

	assignments, err := o.repo.ListAssignments(ctx, req.VehicleID, req.TransportDate)
	if err != nil {
		return nil, fmt.Errorf("optimize stops: list assignments: %w", err)
	}

	result := &domain.RouteResult{
		VehicleID:             req.VehicleID,
		TransportDate:         req.TransportDate,
		Stops:                 []domain.RouteStop{},
		ExcludedAssignmentIDs: []int{},
	}

	// No assignments is a valid empty day, not an error.
	if len(assignments) == 0 {
		return result, nil
	}

	// Split into geocoded stops (in stored order) and excluded assignments.
	// Excluded assignments keep their prior stop_order untouched.
	stops := make([]domain.Stop, 0, len(assignments))
	for _, a := range assignments {
		if s, ok := a.Stop(); ok {
			stops = append(stops, s)
		} else {
			result.ExcludedAssignmentIDs = append(result.ExcludedAssignmentIDs, a.ID)
		}
	}

	ordered, distanceKm, durationMin, usedProvider := o.planRoute(ctx, req, origin, stops)

	result.TotalDistanceKm = distanceKm
	result.TotalDurationMin = durationMin
	result.UsedExternalProvider = usedProvider

	// Best-effort persistence: one bad row never blocks the rest, but every
	// failure is collected and returned.
	for i, s := range ordered {
		seq := i + 1
		if err := o.repo.UpdateStopOrder(ctx, s.AssignmentID, seq); err != nil {
			log.Printf("stop order write failed: vehicle=%s assignment=%d err=%v", req.VehicleID, s.AssignmentID, err)
			result.WriteFailures = append(result.WriteFailures, domain.WriteFailure{
				AssignmentID: s.AssignmentID,
				Reason:       err.Error(),
			})
		}
		result.Stops = append(result.Stops, domain.RouteStop{Sequence: seq, Stop: s})
	}

	return result, nil
}

// planRoute picks a strategy: the external provider when one is configured
// and there are at least two geocoded stops, otherwise the local heuristic.
// Provider failures are logged and recovered, never surfaced.
func (o *StopOptimizer) planRoute(
	ctx context.Context,
	req OptimizeRequest,
	origin domain.Coordinate,
	stops []domain.Stop,
) (ordered []domain.Stop, distanceKm, durationMin float64, usedProvider bool) {
	if o.provider != nil && len(stops) >= 2 {
		pctx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
		est, err := o.provider.OptimizeRoute(pctx, origin, stops)
		cancel()

		if err == nil {
			err = validatePermutation(stops, est.Stops)
		}
		if err == nil {
			return est.Stops, est.DistanceKm, est.DurationMin, true
		}
		log.Printf("route provider failed, using local heuristic: vehicle=%s date=%s err=%v",
			req.VehicleID, req.TransportDate.Format("2006-01-02"), err)
	}

	ordered, distanceKm, err := NearestNeighborOrder(origin, stops)
	if err != nil {
		// Stops are pre-validated during partitioning, so this only fires
		// on an invalid origin slipping through; keep stored order.
		log.Printf("nearest neighbor failed, keeping stored order: vehicle=%s err=%v", req.VehicleID, err)
		ordered = stops
		distanceKm = 0
	}
	durationMin = geo.EstimateDurationMin(distanceKm, len(ordered), o.cfg.AvgSpeedKmh, o.cfg.StopDwellMin)
	return ordered, distanceKm, durationMin, false
}

// validatePermutation guards against a provider returning a reordering that
// drops or duplicates stops. Such a response counts as a provider failure.
func validatePermutation(in, out []domain.Stop) error {
	if len(in) != len(out) {
		return fmt.Errorf("provider returned %d stops, want %d", len(out), len(in))
	}
	want := make(map[int]int, len(in))
	for _, s := range in {
		want[s.AssignmentID]++
	}
	for _, s := range out {
		want[s.AssignmentID]--
		if want[s.AssignmentID] < 0 {
			return fmt.Errorf("provider returned unexpected assignment %d", s.AssignmentID)
		}
	}
	return nil
}
