package domain

import "time"

type ScreenStatus string

const (
	ScreenActive           ScreenStatus = "ACTIVE"
	ScreenInactive         ScreenStatus = "INACTIVE"
	ScreenUnderMaintenance ScreenStatus = "UNDER_MAINTENANCE"
	ScreenRejected         ScreenStatus = "REJECTED"
)

// Screen is owned by the screen catalog; the booking engine only reads it.
// ActiveFrom/ActiveTo are local wall-clock bounds in "15:04" form, e.g.
// "06:00" and "23:00".
type Screen struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	OwnerID    int64        `json:"owner_id"`
	Status     ScreenStatus `json:"status"`
	HourlyRate float64      `json:"hourly_rate"`
	ActiveFrom string       `json:"active_from"`
	ActiveTo   string       `json:"active_to"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
