package dto

type LoadResponse struct {
	VehicleID     string  `json:"vehicle_id"`
	VehicleName   string  `json:"vehicle_name"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	TotalVolumeM3 float64 `json:"total_volume_m3"`
	MaxWeightKg   float64 `json:"max_weight_kg"`
	MaxVolumeM3   float64 `json:"max_volume_m3"`
	OverWeight    bool    `json:"over_weight"`
	OverVolume    bool    `json:"over_volume"`
}
