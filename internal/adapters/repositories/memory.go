package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fleet-routing-service/internal/domain"
)

// MemoryStore is an in-memory implementation of the repository ports.
// It backs service tests and local development without postgres, and mirrors
// the postgres repository's contracts: duplicate detection on the
// (vehicle, booking, date) triple, stop_order-sorted reads, per-row writes.
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      int
	assignments map[int]*domain.TransportAssignment
	vehicles    map[string]*domain.Vehicle
	items       map[string][]domain.BookingItem

	// UpdateErr, when set, injects a write failure for UpdateStopOrder.
	// Used by tests to exercise partial-persistence reporting.
	UpdateErr func(assignmentID int) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		assignments: make(map[int]*domain.TransportAssignment),
		vehicles:    make(map[string]*domain.Vehicle),
		items:       make(map[string][]domain.BookingItem),
	}
}

func dayKey(vehicleID string, date time.Time) string {
	return vehicleID + "|" + date.Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// PutVehicle stores or replaces a vehicle record.
func (m *MemoryStore) PutVehicle(v domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = &v
}

// PutBookingItems registers line items for a vehicle-day.
func (m *MemoryStore) PutBookingItems(vehicleID string, date time.Time, items ...domain.BookingItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(vehicleID, date)
	m.items[key] = append(m.items[key], items...)
}

func (m *MemoryStore) CreateAssignment(ctx context.Context, a *domain.TransportAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.assignments {
		if existing.VehicleID == a.VehicleID &&
			existing.BookingID == a.BookingID &&
			sameDay(existing.TransportDate, a.TransportDate) {
			return fmt.Errorf("create assignment: vehicle=%s booking=%d date=%s: %w",
				a.VehicleID, a.BookingID, a.TransportDate.Format("2006-01-02"), domain.ErrDuplicateAssignment)
		}
	}

	cp := *a
	if cp.ID == 0 {
		cp.ID = m.nextID
		m.nextID++
	} else if cp.ID >= m.nextID {
		m.nextID = cp.ID + 1
	}
	if cp.Status == "" {
		cp.Status = domain.StatusPending
	}
	m.assignments[cp.ID] = &cp
	a.ID = cp.ID
	return nil
}

func (m *MemoryStore) ListAssignments(ctx context.Context, vehicleID string, date time.Time) ([]*domain.TransportAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.TransportAssignment, 0)
	for _, a := range m.assignments {
		if a.VehicleID == vehicleID && sameDay(a.TransportDate, date) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StopOrder != out[j].StopOrder {
			return out[i].StopOrder < out[j].StopOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetAssignment(ctx context.Context, assignmentID int) (*domain.TransportAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[assignmentID]
	if !ok {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) UpdateStopOrder(ctx context.Context, assignmentID int, stopOrder int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		if err := m.UpdateErr(assignmentID); err != nil {
			return err
		}
	}

	a, ok := m.assignments[assignmentID]
	if !ok {
		return fmt.Errorf("update stop order: assignment %d: %w", assignmentID, domain.ErrNotFound)
	}
	a.StopOrder = stopOrder
	return nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, assignmentID int, status domain.AssignmentStatus, driverNotes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assignments[assignmentID]
	if !ok {
		return fmt.Errorf("update status: assignment %d: %w", assignmentID, domain.ErrNotFound)
	}
	a.Status = status
	if driverNotes != "" {
		a.DriverNotes = driverNotes
	}
	return nil
}

func (m *MemoryStore) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vehicles[vehicleID]
	if !ok {
		return nil, fmt.Errorf("get vehicle %q: %w", vehicleID, domain.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (m *MemoryStore) ListBookingItems(ctx context.Context, vehicleID string, date time.Time) ([]domain.BookingItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.items[dayKey(vehicleID, date)]
	out := make([]domain.BookingItem, len(src))
	copy(out, src)
	return out, nil
}
