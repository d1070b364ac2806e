package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/adapters/routing"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/geo"
	"fleet-routing-service/internal/ports"
)

var (
	testDate  = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	testDepot = domain.Coordinate{Lat: 59.33, Lng: 18.06}
)

func testConfig() OptimizerConfig {
	return OptimizerConfig{
		DefaultOrigin:   testDepot,
		AvgSpeedKmh:     40,
		StopDwellMin:    5,
		ProviderTimeout: time.Second,
	}
}

func coordPtr(lat, lng float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lng: lng}
}

// seedThreeStops stores the central-Stockholm scenario: three geocoded
// bookings assigned to VH-1 on the test date.
func seedThreeStops(t *testing.T, store *repositories.MemoryStore) []*domain.TransportAssignment {
	t.Helper()

	seeds := []*domain.TransportAssignment{
		{VehicleID: "VH-1", BookingID: 101, TransportDate: testDate, StopOrder: 1,
			Client: "Alpha AB", Address: "Hamngatan 1", Delivery: coordPtr(59.33, 18.07)},
		{VehicleID: "VH-1", BookingID: 102, TransportDate: testDate, StopOrder: 2,
			Client: "Beta AB", Address: "Odengatan 2", Delivery: coordPtr(59.35, 18.05)},
		{VehicleID: "VH-1", BookingID: 103, TransportDate: testDate, StopOrder: 3,
			Client: "Gamma AB", Address: "Hornsgatan 3", Delivery: coordPtr(59.30, 18.10)},
	}
	for _, s := range seeds {
		if err := store.CreateAssignment(context.Background(), s); err != nil {
			t.Fatalf("seed assignment: %v", err)
		}
	}
	return seeds
}

func TestOptimizeValidation(t *testing.T) {
	opt := NewStopOptimizer(repositories.NewMemoryStore(), nil, testConfig())

	_, err := opt.Optimize(context.Background(), OptimizeRequest{TransportDate: testDate})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing vehicle id: err = %v, want ErrValidation", err)
	}

	_, err = opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing date: err = %v, want ErrValidation", err)
	}

	bad := domain.Coordinate{Lat: 123, Lng: 18}
	_, err = opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate, Origin: &bad})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid origin: err = %v, want ErrValidation", err)
	}
}

func TestOptimizeEmptyDayIsSuccess(t *testing.T) {
	opt := NewStopOptimizer(repositories.NewMemoryStore(), nil, testConfig())

	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stops) != 0 {
		t.Errorf("stops = %d, want 0", len(res.Stops))
	}
	if res.TotalDistanceKm != 0 || res.TotalDurationMin != 0 {
		t.Errorf("totals = (%v, %v), want (0, 0)", res.TotalDistanceKm, res.TotalDurationMin)
	}
	if res.UsedExternalProvider {
		t.Error("empty day must not report provider usage")
	}
}

func TestOptimizeHeuristicPathAndPersistence(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedThreeStops(t, store)
	opt := NewStopOptimizer(store, nil, testConfig())

	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []int{101, 102, 103}
	got := res.OrderedBookingIDs()
	if len(got) != len(wantOrder) {
		t.Fatalf("optimized order length = %d, want %d", len(got), len(wantOrder))
	}
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Fatalf("optimized order = %v, want %v", got, wantOrder)
		}
	}

	if res.UsedExternalProvider {
		t.Error("no provider configured, flag must be false")
	}

	// Reported totals match the independent recomputation plus the
	// configured duration estimate.
	var ordered []domain.Stop
	for _, s := range res.Stops {
		if s.Sequence != len(ordered)+1 {
			t.Errorf("sequence = %d, want %d", s.Sequence, len(ordered)+1)
		}
		ordered = append(ordered, s.Stop)
	}
	recomputed, _ := geo.RouteDistanceKm(testDepot, ordered)
	if math.Abs(res.TotalDistanceKm-recomputed) > 1e-9 {
		t.Errorf("distance = %v, recomputed = %v", res.TotalDistanceKm, recomputed)
	}
	wantDuration := geo.EstimateDurationMin(recomputed, 3, 40, 5)
	if math.Abs(res.TotalDurationMin-wantDuration) > 1e-9 {
		t.Errorf("duration = %v, want %v", res.TotalDurationMin, wantDuration)
	}

	// Persistence round-trip: re-reading by stop_order reproduces the
	// returned order exactly.
	stored, err := store.ListAssignments(context.Background(), "VH-1", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, a := range stored {
		if a.BookingID != wantOrder[i] {
			t.Errorf("stored position %d: booking = %d, want %d", i+1, a.BookingID, wantOrder[i])
		}
		if a.StopOrder != i+1 {
			t.Errorf("stored stop_order = %d, want %d", a.StopOrder, i+1)
		}
	}

	if len(res.WriteFailures) != 0 {
		t.Errorf("write failures = %v, want none", res.WriteFailures)
	}
}

func TestOptimizeProviderSuccessAdoptsOrder(t *testing.T) {
	store := repositories.NewMemoryStore()
	seeds := seedThreeStops(t, store)

	// Provider reverses the stored order and reports road totals.
	reversed := make([]domain.Stop, 0, len(seeds))
	for i := len(seeds) - 1; i >= 0; i-- {
		s, _ := seeds[i].Stop()
		reversed = append(reversed, s)
	}
	provider := &routing.MockRouteProvider{
		Estimate: ports.RouteEstimate{Stops: reversed, DistanceKm: 12.3, DurationMin: 31},
	}

	opt := NewStopOptimizer(store, provider, testConfig())
	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.UsedExternalProvider {
		t.Error("provider succeeded, flag must be true")
	}
	if provider.Calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.Calls)
	}
	if res.TotalDistanceKm != 12.3 || res.TotalDurationMin != 31 {
		t.Errorf("totals = (%v, %v), want provider's (12.3, 31)", res.TotalDistanceKm, res.TotalDurationMin)
	}

	want := []int{103, 102, 101}
	got := res.OrderedBookingIDs()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	stored, _ := store.ListAssignments(context.Background(), "VH-1", testDate)
	for i, a := range stored {
		if a.BookingID != want[i] {
			t.Errorf("stored position %d: booking = %d, want %d", i+1, a.BookingID, want[i])
		}
	}
}

func TestOptimizeFallsBackOnProviderFailure(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedThreeStops(t, store)
	provider := &routing.MockRouteProvider{Err: errors.New("dial tcp: connection refused")}

	opt := NewStopOptimizer(store, provider, testConfig())
	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("provider failure must not fail the request: %v", err)
	}

	if res.UsedExternalProvider {
		t.Error("fallback result must not report provider usage")
	}
	if provider.Calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.Calls)
	}

	// Still a valid permutation of the assigned bookings.
	seen := make(map[int]bool)
	for _, id := range res.OrderedBookingIDs() {
		seen[id] = true
	}
	for _, want := range []int{101, 102, 103} {
		if !seen[want] {
			t.Errorf("booking %d missing from fallback order", want)
		}
	}
	if res.TotalDistanceKm <= 0 {
		t.Errorf("fallback distance = %v, want > 0", res.TotalDistanceKm)
	}
}

func TestOptimizeRejectsProviderDroppingStops(t *testing.T) {
	store := repositories.NewMemoryStore()
	seeds := seedThreeStops(t, store)

	// Malformed provider answer: only two of three stops come back.
	s0, _ := seeds[0].Stop()
	s1, _ := seeds[1].Stop()
	provider := &routing.MockRouteProvider{
		Estimate: ports.RouteEstimate{Stops: []domain.Stop{s1, s0}, DistanceKm: 5, DurationMin: 10},
	}

	opt := NewStopOptimizer(store, provider, testConfig())
	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UsedExternalProvider {
		t.Error("a dropped stop must count as provider failure")
	}
	if len(res.Stops) != 3 {
		t.Errorf("stops = %d, want all 3 via fallback", len(res.Stops))
	}
}

func TestOptimizeSingleStopSkipsProvider(t *testing.T) {
	store := repositories.NewMemoryStore()
	err := store.CreateAssignment(context.Background(), &domain.TransportAssignment{
		VehicleID: "VH-1", BookingID: 101, TransportDate: testDate,
		Client: "Alpha AB", Delivery: coordPtr(59.35, 18.05),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	provider := &routing.MockRouteProvider{Err: errors.New("must not be called")}
	opt := NewStopOptimizer(store, provider, testConfig())

	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Calls != 0 {
		t.Errorf("provider calls = %d, want 0 for a single stop", provider.Calls)
	}

	direct, _ := geo.DistanceKm(testDepot, domain.Coordinate{Lat: 59.35, Lng: 18.05})
	if math.Abs(res.TotalDistanceKm-direct) > 1e-9 {
		t.Errorf("distance = %v, want origin->stop %v", res.TotalDistanceKm, direct)
	}
	if len(res.Stops) != 1 || res.Stops[0].Sequence != 1 {
		t.Fatalf("stops = %+v, want one stop with sequence 1", res.Stops)
	}
}

func TestOptimizeExcludesNonGeocodedStops(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedThreeStops(t, store)
	noCoords := &domain.TransportAssignment{
		VehicleID: "VH-1", BookingID: 104, TransportDate: testDate, StopOrder: 4,
		Client: "Delta AB", Address: "Okänd gata",
	}
	if err := store.CreateAssignment(context.Background(), noCoords); err != nil {
		t.Fatalf("seed: %v", err)
	}

	opt := NewStopOptimizer(store, nil, testConfig())
	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Stops) != 3 {
		t.Errorf("optimized stops = %d, want 3 geocoded", len(res.Stops))
	}
	if len(res.ExcludedAssignmentIDs) != 1 || res.ExcludedAssignmentIDs[0] != noCoords.ID {
		t.Errorf("excluded = %v, want [%d]", res.ExcludedAssignmentIDs, noCoords.ID)
	}

	// The excluded assignment keeps its prior order and is never dropped.
	stored, _ := store.ListAssignments(context.Background(), "VH-1", testDate)
	found := false
	for _, a := range stored {
		if a.ID == noCoords.ID {
			found = true
			if a.StopOrder != 4 {
				t.Errorf("excluded stop_order = %d, want untouched 4", a.StopOrder)
			}
		}
	}
	if !found {
		t.Error("excluded assignment missing from store")
	}
}

func TestOptimizeReportsPartialWriteFailures(t *testing.T) {
	store := repositories.NewMemoryStore()
	seeds := seedThreeStops(t, store)
	failID := seeds[1].ID

	store.UpdateErr = func(assignmentID int) error {
		if assignmentID == failID {
			return errors.New("connection reset by peer")
		}
		return nil
	}

	opt := NewStopOptimizer(store, nil, testConfig())
	res, err := opt.Optimize(context.Background(), OptimizeRequest{VehicleID: "VH-1", TransportDate: testDate})
	if err != nil {
		t.Fatalf("partial write failure must not fail the request: %v", err)
	}

	if len(res.WriteFailures) != 1 {
		t.Fatalf("write failures = %d, want 1", len(res.WriteFailures))
	}
	if res.WriteFailures[0].AssignmentID != failID {
		t.Errorf("failed assignment = %d, want %d", res.WriteFailures[0].AssignmentID, failID)
	}
	if len(res.Stops) != 3 {
		t.Errorf("stops = %d, want all 3 despite the failed write", len(res.Stops))
	}

	// The remaining writes still happened.
	store.UpdateErr = nil
	stored, _ := store.ListAssignments(context.Background(), "VH-1", testDate)
	updated := 0
	for i, a := range stored {
		if a.ID != failID && a.StopOrder == i+1 {
			updated++
		}
	}
	if updated != 2 {
		t.Errorf("updated rows = %d, want 2", updated)
	}
}

func TestOptimizeUsesSuppliedOrigin(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedThreeStops(t, store)
	opt := NewStopOptimizer(store, nil, testConfig())

	// Start south-east: the southern stop becomes closest and must lead.
	origin := domain.Coordinate{Lat: 59.29, Lng: 18.11}
	res, err := opt.Optimize(context.Background(), OptimizeRequest{
		VehicleID: "VH-1", TransportDate: testDate, Origin: &origin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stops[0].BookingID != 103 {
		t.Errorf("first stop = %d, want 103 when starting south-east", res.Stops[0].BookingID)
	}
}

func TestDuplicateAssignmentIsDistinct(t *testing.T) {
	store := repositories.NewMemoryStore()
	a := &domain.TransportAssignment{VehicleID: "VH-1", BookingID: 101, TransportDate: testDate}
	if err := store.CreateAssignment(context.Background(), a); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := &domain.TransportAssignment{VehicleID: "VH-1", BookingID: 101, TransportDate: testDate}
	err := store.CreateAssignment(context.Background(), dup)
	if !errors.Is(err, domain.ErrDuplicateAssignment) {
		t.Errorf("err = %v, want ErrDuplicateAssignment", err)
	}

	// Same booking on a different day is fine.
	other := &domain.TransportAssignment{VehicleID: "VH-1", BookingID: 101, TransportDate: testDate.AddDate(0, 0, 1)}
	if err := store.CreateAssignment(context.Background(), other); err != nil {
		t.Errorf("different day: unexpected error %v", err)
	}
}
