package ports

import "context"

// RouteCache stores provider route estimates keyed by a waypoint fingerprint.
// Optional: adapters treat a nil cache as a no-op, and cache errors are never
// allowed to fail a routing request.
type RouteCache interface {
	// Get returns the cached estimate and whether the key was present.
	Get(ctx context.Context, key string) (RouteEstimate, bool, error)

	// Put stores an estimate under the key.
	Put(ctx context.Context, key string, est RouteEstimate) error
}
