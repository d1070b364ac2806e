package domain

// BookingItem is one line item of a booking: a product with per-unit weight
// and volume. Missing weight or volume in the source data is read as zero.
type BookingItem struct {
	BookingID int
	Name      string
	WeightKg  float64
	VolumeM3  float64
	Quantity  int
}

// CargoLoad is the aggregated weight and volume of everything assigned to a
// vehicle on a date. Purely additive, informational only.
type CargoLoad struct {
	TotalWeightKg float64
	TotalVolumeM3 float64
}

// LoadReport pairs the aggregated load with the vehicle's capacity so a
// caller can flag over-capacity. Nothing in this service enforces the limit.
type LoadReport struct {
	Vehicle    Vehicle
	Load       CargoLoad
	OverWeight bool
	OverVolume bool
}
