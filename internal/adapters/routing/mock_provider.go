package routing

import (
	"context"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

// MockRouteProvider returns a scripted estimate or error. Test helper.
type MockRouteProvider struct {
	Estimate ports.RouteEstimate
	Err      error
	Calls    int
}

func (m *MockRouteProvider) OptimizeRoute(
	ctx context.Context,
	origin domain.Coordinate,
	stops []domain.Stop,
) (ports.RouteEstimate, error) {
	m.Calls++
	if m.Err != nil {
		return ports.RouteEstimate{}, m.Err
	}
	return m.Estimate, nil
}
