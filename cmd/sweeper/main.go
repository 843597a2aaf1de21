package main

import (
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"adscreen/internal/database"
	"adscreen/internal/domain"
)

// One-shot stale-hold expiry, for running from cron alongside the in-process
// sweeper in cmd/api.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	now := time.Now().UTC()
	res := db.Exec(
		`UPDATE bookings SET status = ?, hold_expires_at = NULL, updated_at = ? WHERE status = ? AND hold_expires_at <= ?`,
		string(domain.BookingExpired), now, string(domain.BookingHeld), now,
	)
	if res.Error != nil {
		log.Fatalf("hold sweep failed: %v", res.Error)
	}

	log.Printf("hold sweep completed: expired=%d", res.RowsAffected)
}
