package booking

import (
	"time"

	"adscreen/internal/domain"
)

type CreateHoldRequest struct {
	ScreenID      int64     `json:"screen_id" binding:"required"`
	ContentID     int64     `json:"content_id" binding:"required"`
	StartDatetime time.Time `json:"start_datetime" binding:"required"`
	EndDatetime   time.Time `json:"end_datetime" binding:"required"`
}

type ConflictDetails struct {
	ConflictStart time.Time `json:"conflict_start"`
	ConflictEnd   time.Time `json:"conflict_end"`
}

type BookingResponse struct {
	ID               int64      `json:"id"`
	Reference        string     `json:"reference"`
	ScreenID         int64      `json:"screen_id"`
	ContentID        int64      `json:"content_id"`
	StartDatetime    time.Time  `json:"start_datetime"`
	EndDatetime      time.Time  `json:"end_datetime"`
	Status           string     `json:"status"`
	PriceAmount      float64    `json:"price_amount"`
	OwnerEarnings    float64    `json:"owner_earnings"`
	CommissionAmount float64    `json:"commission_amount"`
	HoldExpiresAt    *time.Time `json:"hold_expires_at,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toBookingResponse(b *domain.Booking, now time.Time) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		Reference:        b.Reference,
		ScreenID:         b.ScreenID,
		ContentID:        b.ContentID,
		StartDatetime:    b.StartDatetime,
		EndDatetime:      b.EndDatetime,
		Status:           string(b.EffectiveStatus(now)),
		PriceAmount:      b.PriceAmount,
		OwnerEarnings:    b.OwnerEarnings,
		CommissionAmount: b.CommissionAmount,
		HoldExpiresAt:    b.HoldExpiresAt,
		ConfirmedAt:      b.ConfirmedAt,
		CreatedAt:        b.CreatedAt,
	}
}
