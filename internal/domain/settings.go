package domain

import "time"

// PlatformSettings is the admin-configurable singleton. The engine reads a
// snapshot per request so pricing stays deterministic; the commission in
// effect at hold time is copied onto the booking.
type PlatformSettings struct {
	ID                            int64     `json:"id"`
	CommissionPercentage          float64   `json:"commission_percentage"`
	MinimumBookingDurationMinutes int       `json:"minimum_booking_duration_minutes"`
	MaintenanceMode               bool      `json:"maintenance_mode"`
	AutoApproveScreens            bool      `json:"auto_approve_screens"`
	UpdatedAt                     time.Time `json:"updated_at"`
}

func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		CommissionPercentage:          25.0,
		MinimumBookingDurationMinutes: 60,
		MaintenanceMode:               false,
		AutoApproveScreens:            false,
	}
}
