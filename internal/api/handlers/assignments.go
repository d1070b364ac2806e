package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"
)

// AssignmentHandler exposes read-only assignment retrieval for driver UI and
// load planning consumers.
type AssignmentHandler struct {
	Repo ports.AssignmentRepository
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	vehicleID := strings.TrimSpace(r.URL.Query().Get("vehicle_id"))
	if vehicleID == "" {
		writeError(w, r, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	assignments, err := h.Repo.ListAssignments(r.Context(), vehicleID, date)
	if err != nil {
		log.Printf("list assignments failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListAssignmentsResponse{
		Assignments: make([]dto.AssignmentResponse, 0, len(assignments)),
	}
	for _, a := range assignments {
		res.Assignments = append(res.Assignments, toAssignmentResponse(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// UpdateStatus moves an assignment through the delivery lifecycle
// (pending -> in_transit -> delivered, skipped from either active state).
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.UpdateStatusRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.AssignmentID <= 0 {
		writeError(w, r, http.StatusBadRequest, "assignment_id is required")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, r, http.StatusBadRequest, "status is required")
		return
	}

	updated, err := services.UpdateAssignmentStatus(
		r.Context(), h.Repo, req.AssignmentID,
		domain.AssignmentStatus(req.Status), strings.TrimSpace(req.DriverNotes),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "assignment not found")
		default:
			log.Printf("update assignment status failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, toAssignmentResponse(updated))
}

func toAssignmentResponse(a *domain.TransportAssignment) dto.AssignmentResponse {
	item := dto.AssignmentResponse{
		ID:            a.ID,
		VehicleID:     a.VehicleID,
		BookingID:     a.BookingID,
		TransportDate: a.TransportDate.Format(dateLayout),
		StopOrder:     a.StopOrder,
		Status:        string(a.Status),
		DriverNotes:   a.DriverNotes,
		Client:        a.Client,
		Address:       a.Address,
	}
	if s, ok := a.Stop(); ok {
		lat, lng := s.Coord.Lat, s.Coord.Lng
		item.Lat, item.Lng = &lat, &lng
	}
	return item
}
