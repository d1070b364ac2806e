package dto

type OptimizeRequest struct {
	VehicleID     string   `json:"vehicle_id"`
	TransportDate string   `json:"transport_date"`
	StartLat      *float64 `json:"start_lat"`
	StartLng      *float64 `json:"start_lng"`
}

type StopResponse struct {
	Order     int     `json:"order"`
	BookingID int     `json:"booking_id"`
	Client    string  `json:"client"`
	Address   string  `json:"address"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

type WriteFailureResponse struct {
	AssignmentID int    `json:"assignment_id"`
	Error        string `json:"error"`
}

type OptimizeResponse struct {
	Success               bool                   `json:"success"`
	OptimizedOrder        []int                  `json:"optimized_order"`
	Stops                 []StopResponse         `json:"stops"`
	TotalDistanceKm       float64                `json:"total_distance_km"`
	TotalDurationMin      float64                `json:"total_duration_min"`
	UsedGoogleAPI         bool                   `json:"used_google_api"`
	ExcludedAssignmentIDs []int                  `json:"excluded_assignment_ids"`
	WriteFailures         []WriteFailureResponse `json:"write_failures,omitempty"`
}
