package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/services"
)

type RouteHandler struct {
	Optimizer *services.StopOptimizer
}

// Optimize orders a vehicle's stops for one day and reports the result.
// Degraded outcomes (provider fallback, partial coordinate coverage, partial
// write failures) ride along inside a successful response.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	vehicleID := strings.TrimSpace(req.VehicleID)
	if vehicleID == "" {
		writeError(w, r, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	date, err := parseDate(req.TransportDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "transport_date must be YYYY-MM-DD")
		return
	}

	if (req.StartLat == nil) != (req.StartLng == nil) {
		writeError(w, r, http.StatusBadRequest, "start_lat and start_lng must be supplied together")
		return
	}

	svcReq := services.OptimizeRequest{
		VehicleID:     vehicleID,
		TransportDate: date,
	}
	if req.StartLat != nil {
		svcReq.Origin = &domain.Coordinate{Lat: *req.StartLat, Lng: *req.StartLng}
	}

	result, err := h.Optimizer.Optimize(r.Context(), svcReq)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("optimize stops failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(result))
}

func toOptimizeResponse(result *domain.RouteResult) dto.OptimizeResponse {
	res := dto.OptimizeResponse{
		Success:               true,
		OptimizedOrder:        result.OrderedBookingIDs(),
		Stops:                 make([]dto.StopResponse, 0, len(result.Stops)),
		TotalDistanceKm:       result.TotalDistanceKm,
		TotalDurationMin:      result.TotalDurationMin,
		UsedGoogleAPI:         result.UsedExternalProvider,
		ExcludedAssignmentIDs: result.ExcludedAssignmentIDs,
	}

	for _, s := range result.Stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			Order:     s.Sequence,
			BookingID: s.BookingID,
			Client:    s.Client,
			Address:   s.Address,
			Lat:       s.Coord.Lat,
			Lng:       s.Coord.Lng,
		})
	}

	for _, f := range result.WriteFailures {
		res.WriteFailures = append(res.WriteFailures, dto.WriteFailureResponse{
			AssignmentID: f.AssignmentID,
			Error:        f.Reason,
		})
	}

	return res
}
