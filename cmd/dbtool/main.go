package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	database, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/fleet.json")
	if err := initAndSeed(database, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(database *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	assignments, err := repositories.SeedFromJSON(database, seedPath)
	if err != nil {
		return err
	}

	// Assignments go through the repository so the (vehicle, booking, date)
	// uniqueness rule is exercised: duplicates are skipped, not upserted.
	repo := repositories.NewPostgresAssignmentRepository(database)
	created, skipped := 0, 0
	for i := range assignments {
		a := assignments[i]
		err := repo.CreateAssignment(context.Background(), &a)
		if errors.Is(err, domain.ErrDuplicateAssignment) {
			log.Printf("skipping duplicate assignment: vehicle=%s booking=%d date=%s",
				a.VehicleID, a.BookingID, a.TransportDate.Format("2006-01-02"))
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		created++
	}

	log.Printf("Seeding complete. assignments_created=%d assignments_skipped=%d", created, skipped)
	return nil
}
