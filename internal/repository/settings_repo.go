package repository

import (
	"context"
	"errors"
	"time"

	"adscreen/internal/domain"

	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

type platformSettingsModel struct {
	ID                            int64     `gorm:"column:id;primaryKey"`
	CommissionPercentage          float64   `gorm:"column:commission_percentage"`
	MinimumBookingDurationMinutes int       `gorm:"column:minimum_booking_duration_minutes"`
	MaintenanceMode               bool      `gorm:"column:maintenance_mode"`
	AutoApproveScreens            bool      `gorm:"column:auto_approve_screens"`
	UpdatedAt                     time.Time `gorm:"column:updated_at"`
}

func (platformSettingsModel) TableName() string { return "platform_settings" }

func PlatformSettingsModel() any { return &platformSettingsModel{} }

// Snapshot returns the settings row in effect right now. A missing row
// falls back to defaults so a fresh database behaves sanely.
func (r *SettingsRepository) Snapshot(ctx context.Context) (domain.PlatformSettings, error) {
	var m platformSettingsModel
	tx := r.db.WithContext(ctx).Order("id").First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return domain.DefaultPlatformSettings(), nil
		}
		return domain.PlatformSettings{}, tx.Error
	}
	return domain.PlatformSettings{
		ID:                            m.ID,
		CommissionPercentage:          m.CommissionPercentage,
		MinimumBookingDurationMinutes: m.MinimumBookingDurationMinutes,
		MaintenanceMode:               m.MaintenanceMode,
		AutoApproveScreens:            m.AutoApproveScreens,
		UpdatedAt:                     m.UpdatedAt,
	}, nil
}
