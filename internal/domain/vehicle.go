package domain

// Delivery vehicle record. Owned by the fleet-management side of the system;
// this service only reads it (capacity is reported against cargo load, never
// enforced at optimization time).
type Vehicle struct {
	ID          string
	Name        string
	MaxWeightKg float64
	MaxVolumeM3 float64
	Active      bool
}
