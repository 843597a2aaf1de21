package booking

import (
	"context"
	"time"

	"adscreen/internal/domain"
)

// BookingRepository is the persistence surface the hold manager needs.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, ref string) (*domain.Booking, error)
	FindConflicting(ctx context.Context, screenID int64, start, end, now time.Time) (*domain.Booking, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	ExpireStaleForScreen(ctx context.Context, screenID int64, now time.Time) (int64, error)
	CancelIfHeld(ctx context.Context, bookingID int64, now time.Time) (bool, error)
	CancelConfirmed(ctx context.Context, bookingID int64, now time.Time) (bool, error)
	ListByAdvertiser(ctx context.Context, advertiserID int64, limit, offset int) ([]domain.Booking, error)
}

// ScreenReader supplies screen metadata from the catalog.
type ScreenReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Screen, error)
}

// ContentReader checks that the referenced creative exists and is approved.
type ContentReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Content, error)
}

// SettingsProvider yields the platform settings snapshot used for a single
// hold/pricing decision.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (domain.PlatformSettings, error)
}
