package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Registers the cgo-free "sqlite" driver used below.
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// EnsureBookingExclusion installs the range-overlap exclusion constraint on
// bookings for PostgreSQL. Two rows for the same screen whose [start, end)
// ranges intersect cannot both be HELD/CONFIRMED; the insert that loses
// fails with SQLSTATE 23P01. On SQLite this is a no-op and the per-screen
// lock in the hold manager is the only serialization point.
func EnsureBookingExclusion(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}
	return db.Exec(`
DO $$ BEGIN
  ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
    EXCLUDE USING gist (
      screen_id WITH =,
      tstzrange(start_datetime, end_datetime, '[)') WITH &&
    ) WHERE (status IN ('HELD', 'CONFIRMED'));
EXCEPTION WHEN duplicate_table OR duplicate_object THEN NULL;
END $$;
`).Error
}
