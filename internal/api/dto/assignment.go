package dto

type AssignmentResponse struct {
	ID            int      `json:"id"`
	VehicleID     string   `json:"vehicle_id"`
	BookingID     int      `json:"booking_id"`
	TransportDate string   `json:"transport_date"`
	StopOrder     int      `json:"stop_order"`
	Status        string   `json:"status"`
	DriverNotes   string   `json:"driver_notes,omitempty"`
	Client        string   `json:"client"`
	Address       string   `json:"address"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

type ListAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

type UpdateStatusRequest struct {
	AssignmentID int    `json:"assignment_id"`
	Status       string `json:"status"`
	DriverNotes  string `json:"driver_notes"`
}
