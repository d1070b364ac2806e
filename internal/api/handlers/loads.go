package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"
)

// LoadHandler reports aggregated cargo weight/volume against vehicle
// capacity. Informational: over-capacity is flagged, never enforced.
type LoadHandler struct {
	Vehicles ports.VehicleRepository
	Items    ports.BookingItemRepository
}

func (h *LoadHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	report, err := services.VehicleLoad(r.Context(), h.Vehicles, h.Items, vehicleID, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "vehicle not found")
		default:
			log.Printf("vehicle load failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.LoadResponse{
		VehicleID:     report.Vehicle.ID,
		VehicleName:   report.Vehicle.Name,
		TotalWeightKg: report.Load.TotalWeightKg,
		TotalVolumeM3: report.Load.TotalVolumeM3,
		MaxWeightKg:   report.Vehicle.MaxWeightKg,
		MaxVolumeM3:   report.Vehicle.MaxVolumeM3,
		OverWeight:    report.OverWeight,
		OverVolume:    report.OverVolume,
	})
}
