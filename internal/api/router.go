package api

import (
	"net/http"

	"fleet-routing-service/internal/api/handlers"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(
	optimizer *services.StopOptimizer,
	assignments ports.AssignmentRepository,
	vehicles ports.VehicleRepository,
	items ports.BookingItemRepository,
) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Optimizer: optimizer}
	assignmentHandler := &handlers.AssignmentHandler{Repo: assignments}
	loadHandler := &handlers.LoadHandler{Vehicles: vehicles, Items: items}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("/assignments", assignmentHandler.List)
	mux.HandleFunc("/assignments/status", assignmentHandler.UpdateStatus)
	mux.HandleFunc("/loads", loadHandler.Get)

	return loggingMiddleware(mux)
}
