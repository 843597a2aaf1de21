package domain

import "time"

type BookingStatus string

const (
	BookingHeld      BookingStatus = "HELD"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingExpired   BookingStatus = "EXPIRED"
	BookingCancelled BookingStatus = "CANCELLED"

	// BookingCompleted is a derived, read-only label: a CONFIRMED booking
	// whose end datetime is already in the past. It is never stored.
	BookingCompleted BookingStatus = "COMPLETED"
)

type Booking struct {
	ID            int64         `json:"id"`
	Reference     string        `json:"reference"`
	ScreenID      int64         `json:"screen_id" validate:"required"`
	AdvertiserID  int64         `json:"advertiser_id" validate:"required"`
	ContentID     int64         `json:"content_id" validate:"required"`
	StartDatetime time.Time     `json:"start_datetime" validate:"required"`
	EndDatetime   time.Time     `json:"end_datetime" validate:"required"`
	Status        BookingStatus `json:"status"`

	// Price split snapshotted at hold creation. Later settings changes
	// never touch these.
	PriceAmount       float64 `json:"price_amount"`
	OwnerEarnings     float64 `json:"owner_earnings"`
	CommissionAmount  float64 `json:"commission_amount"`
	CommissionPercent float64 `json:"commission_percent"`

	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OccupiesSlot reports whether the booking blocks its time range at the
// given instant. Only CONFIRMED and live HELD bookings occupy a slot.
func (b *Booking) OccupiesSlot(now time.Time) bool {
	switch b.Status {
	case BookingConfirmed:
		return true
	case BookingHeld:
		return b.HoldExpiresAt != nil && b.HoldExpiresAt.After(now)
	default:
		return false
	}
}

// EffectiveStatus is the externally observable status. A stale HELD row is
// reported EXPIRED even before the sweeper has rewritten it, and a
// CONFIRMED booking whose end is in the past is reported COMPLETED.
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	switch b.Status {
	case BookingHeld:
		if b.HoldExpiresAt != nil && !b.HoldExpiresAt.After(now) {
			return BookingExpired
		}
	case BookingConfirmed:
		if b.EndDatetime.Before(now) {
			return BookingCompleted
		}
	}
	return b.Status
}
