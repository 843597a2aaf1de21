package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"adscreen/internal/database"
	"adscreen/internal/domain"
	"adscreen/internal/repository"
)

// Seeds a local database with a settings row, a few screens and approved
// creatives so the booking flow can be exercised end to end.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "adscreen.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		repository.ScreenModel(),
		repository.ContentModel(),
		repository.PlatformSettingsModel(),
		repository.BookingModel(),
		repository.PaymentOrderModel(),
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}
	if err := database.EnsureBookingExclusion(db); err != nil {
		log.Fatal("exclusion constraint setup failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payment_orders")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM contents")
	db.Exec("DELETE FROM screens")
	db.Exec("DELETE FROM platform_settings")

	settings := domain.DefaultPlatformSettings()
	db.Exec(
		`INSERT INTO platform_settings (commission_percentage, minimum_booking_duration_minutes, maintenance_mode, auto_approve_screens) VALUES (?, ?, ?, ?)`,
		settings.CommissionPercentage, settings.MinimumBookingDurationMinutes, settings.MaintenanceMode, settings.AutoApproveScreens,
	)

	screens := []struct {
		name       string
		ownerID    int64
		status     string
		hourlyRate float64
		from, to   string
	}{
		{"Mall Atrium North", 101, string(domain.ScreenActive), 500, "06:00", "23:00"},
		{"Highway Billboard 7", 101, string(domain.ScreenActive), 750, "00:00", "23:59"},
		{"Metro Concourse East", 102, string(domain.ScreenActive), 350, "05:30", "22:30"},
		{"Stadium Gate B", 103, string(domain.ScreenUnderMaintenance), 900, "10:00", "22:00"},
	}
	for _, s := range screens {
		db.Exec(
			`INSERT INTO screens (name, owner_id, status, hourly_rate, active_from, active_to) VALUES (?, ?, ?, ?, ?, ?)`,
			s.name, s.ownerID, s.status, s.hourlyRate, s.from, s.to,
		)
	}

	contents := []struct {
		uploaderID int64
		title      string
		status     string
	}{
		{201, "Summer Sale 15s", string(domain.ContentApproved)},
		{201, "New Store Opening", string(domain.ContentApproved)},
		{202, "Brand Teaser", string(domain.ContentPending)},
	}
	for _, c := range contents {
		db.Exec(
			`INSERT INTO contents (uploader_id, title, status) VALUES (?, ?, ?)`,
			c.uploaderID, c.title, c.status,
		)
	}

	log.Println("Seed completed.")
}
