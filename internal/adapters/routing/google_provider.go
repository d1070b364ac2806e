package routing

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/geo"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
)

const computeRoutesFieldMask = "routes.distanceMeters,routes.duration,routes.optimizedIntermediateWaypointIndex"

// GoogleRouteProvider implements RouteProvider using the Google Routes API
// (computeRoutes with waypoint order optimization).
//
// The last stop of the unordered list is sent as the fixed destination; all
// other stops are intermediates the service may reorder. The response carries
// the intermediate permutation plus total distance and duration, which the
// adapter maps back onto the domain stops.
//
// Every failure mode (HTTP error, malformed body, timeout) surfaces as an
// error return; callers fall back to the local heuristic. The provider is
// safe for concurrent use.
type GoogleRouteProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	cache   ports.RouteCache
}

// NewGoogleRouteProvider builds a provider. cache may be nil; when set,
// route estimates are reused across identical waypoint sets and cache errors
// are logged and ignored.
func NewGoogleRouteProvider(apiKey string, cache ports.RouteCache) (*GoogleRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google routes api key is empty")
	}

	return &GoogleRouteProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://routes.googleapis.com",
		cache:   cache,
	}, nil
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type waypoint struct {
	Location struct {
		LatLng latLng `json:"latLng"`
	} `json:"location"`
}

func newWaypoint(c domain.Coordinate) waypoint {
	var w waypoint
	w.Location.LatLng = latLng{Latitude: c.Lat, Longitude: c.Lng}
	return w
}

type computeRoutesRequest struct {
	Origin                waypoint   `json:"origin"`
	Destination           waypoint   `json:"destination"`
	Intermediates         []waypoint `json:"intermediates,omitempty"`
	TravelMode            string     `json:"travelMode"`
	OptimizeWaypointOrder bool       `json:"optimizeWaypointOrder,omitempty"`
}

type computeRoutesResponse struct {
	Routes []struct {
		DistanceMeters                     int    `json:"distanceMeters"`
		Duration                           string `json:"duration"`
		OptimizedIntermediateWaypointIndex []int  `json:"optimizedIntermediateWaypointIndex"`
	} `json:"routes"`
}

// OptimizeRoute orders stops via computeRoutes and returns the full ordered
// tour with real road distance and duration.
func (g *GoogleRouteProvider) OptimizeRoute(
	ctx context.Context,
	origin domain.Coordinate,
	stops []domain.Stop,
) (_ ports.RouteEstimate, err error) {
	defer obs.Time(ctx, "google.OptimizeRoute")(&err)

	if err := origin.Validate(); err != nil {
		return ports.RouteEstimate{}, fmt.Errorf("optimize route: origin: %w", err)
	}

	if len(stops) == 0 {
		return ports.RouteEstimate{Stops: []domain.Stop{}}, nil
	}

	// A single stop has nothing to reorder; answer locally instead of
	// spending an API call.
	if len(stops) == 1 {
		d, derr := geo.DistanceKm(origin, stops[0].Coord)
		if derr != nil {
			return ports.RouteEstimate{}, fmt.Errorf("optimize route: single stop: %w", derr)
		}
		return ports.RouteEstimate{Stops: stops, DistanceKm: d}, nil
	}

	key := routeKey(origin, stops)
	if g.cache != nil {
		if est, ok, cerr := g.cache.Get(ctx, key); cerr != nil {
			log.Printf("route cache read failed: %v", cerr)
		} else if ok {
			return est, nil
		}
	}

	est, err := g.computeRoutes(ctx, origin, stops)
	if err != nil {
		return ports.RouteEstimate{}, err
	}

	if g.cache != nil {
		if cerr := g.cache.Put(ctx, key, est); cerr != nil {
			log.Printf("route cache write failed: %v", cerr)
		}
	}

	return est, nil
}

func (g *GoogleRouteProvider) computeRoutes(
	ctx context.Context,
	origin domain.Coordinate,
	stops []domain.Stop,
) (ports.RouteEstimate, error) {
	endpoint := g.baseURL + "/directions/v2:computeRoutes"

	// Convention: the last unordered stop stays the fixed destination, the
	// rest become reorderable intermediates.
	destination := stops[len(stops)-1]
	intermediates := stops[:len(stops)-1]

	body := computeRoutesRequest{
		Origin:                newWaypoint(origin),
		Destination:           newWaypoint(destination.Coord),
		TravelMode:            "DRIVE",
		OptimizeWaypointOrder: true,
	}
	for _, s := range intermediates {
		body.Intermediates = append(body.Intermediates, newWaypoint(s.Coord))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.RouteEstimate{}, fmt.Errorf("marshal compute routes request: %w", err)
	}

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteEstimate{}, fmt.Errorf("compute routes request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded computeRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteEstimate{}, fmt.Errorf("decode compute routes response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.RouteEstimate{}, errors.New("compute routes response contains no routes")
	}
	route := decoded.Routes[0]

	ordered, err := applyWaypointOrder(intermediates, destination, route.OptimizedIntermediateWaypointIndex)
	if err != nil {
		return ports.RouteEstimate{}, err
	}

	durationMin, err := parseDurationMin(route.Duration)
	if err != nil {
		return ports.RouteEstimate{}, err
	}

	return ports.RouteEstimate{
		Stops:       ordered,
		DistanceKm:  float64(route.DistanceMeters) / 1000.0,
		DurationMin: durationMin,
	}, nil
}

// applyWaypointOrder rebuilds the full stop list as
// [reordered intermediates..., destination], validating that the returned
// index list is a proper permutation of the intermediates.
func applyWaypointOrder(intermediates []domain.Stop, destination domain.Stop, order []int) ([]domain.Stop, error) {
	if len(order) != len(intermediates) {
		return nil, fmt.Errorf(
			"optimized waypoint index has %d entries, want %d",
			len(order), len(intermediates),
		)
	}

	seen := make(map[int]struct{}, len(order))
	ordered := make([]domain.Stop, 0, len(intermediates)+1)
	for _, idx := range order {
		if idx < 0 || idx >= len(intermediates) {
			return nil, fmt.Errorf("optimized waypoint index %d out of range", idx)
		}
		if _, dup := seen[idx]; dup {
			return nil, fmt.Errorf("optimized waypoint index %d repeated", idx)
		}
		seen[idx] = struct{}{}
		ordered = append(ordered, intermediates[idx])
	}

	return append(ordered, destination), nil
}

// parseDurationMin converts the API's seconds-suffixed duration ("3600s")
// into minutes.
func parseDurationMin(s string) (float64, error) {
	trimmed := strings.TrimSuffix(s, "s")
	if trimmed == s || trimmed == "" {
		return 0, fmt.Errorf("unexpected duration format %q", s)
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return seconds / 60.0, nil
}

// routeKey fingerprints one origin plus unordered stop set so identical
// requests hit the cache regardless of result ordering.
func routeKey(origin domain.Coordinate, stops []domain.Stop) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.6f,%.6f", origin.Lat, origin.Lng)
	for _, s := range stops {
		fmt.Fprintf(&b, "|%d:%.6f,%.6f", s.AssignmentID, s.Coord.Lat, s.Coord.Lng)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("route:%x", sum[:16])
}
