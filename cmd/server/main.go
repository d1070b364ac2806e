package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/adapters/routing"
	"fleet-routing-service/internal/api"
	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/db"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (postgres, Google Routes, redis) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	port := config.Get("PORT", "8080")

	database, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	assignmentRepo := repositories.NewPostgresAssignmentRepository(database)
	vehicleRepo := repositories.NewPostgresVehicleRepository(database)
	itemRepo := repositories.NewPostgresBookingItemRepository(database)

	// The external provider is optional: without an API key every request
	// runs the local nearest-neighbor heuristic.
	var provider ports.RouteProvider
	if apiKey := os.Getenv("GOOGLE_MAPS_API_KEY"); strings.TrimSpace(apiKey) != "" {
		var cache ports.RouteCache
		if addr := config.Get("REDIS_ADDR", ""); addr != "" {
			client := redis.NewClient(&redis.Options{Addr: addr})
			cache = routing.NewRedisRouteCache(client, config.GetDuration("ROUTE_CACHE_TTL", 15*time.Minute))
			log.Printf("Route cache enabled addr=%s", addr)
		}

		provider, err = routing.NewGoogleRouteProvider(apiKey, cache)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Google Routes provider enabled")
	} else {
		log.Println("GOOGLE_MAPS_API_KEY not set, using local heuristic only")
	}

	optimizer := services.NewStopOptimizer(assignmentRepo, provider, services.OptimizerConfig{
		// Depot defaults to the Stockholm terminal; override per region.
		DefaultOrigin: domain.Coordinate{
			Lat: config.GetFloat("DEPOT_LAT", 59.3293),
			Lng: config.GetFloat("DEPOT_LNG", 18.0686),
		},
		AvgSpeedKmh:     config.GetFloat("AVG_SPEED_KMH", 40),
		StopDwellMin:    config.GetFloat("STOP_DWELL_MIN", 5),
		ProviderTimeout: config.GetDuration("PROVIDER_TIMEOUT", 10*time.Second),
	})

	router := api.NewRouter(optimizer, assignmentRepo, vehicleRepo, itemRepo)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
