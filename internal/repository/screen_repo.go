package repository

import (
	"context"
	"time"

	"adscreen/internal/domain"

	"gorm.io/gorm"
)

// ScreenRepository reads screen metadata maintained by the catalog side of
// the platform. The engine never writes screens.
type ScreenRepository struct {
	db *gorm.DB
}

func NewScreenRepository(db *gorm.DB) *ScreenRepository {
	return &ScreenRepository{db: db}
}

type screenModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name"`
	OwnerID    int64     `gorm:"column:owner_id"`
	Status     string    `gorm:"column:status;index"`
	HourlyRate float64   `gorm:"column:hourly_rate"`
	ActiveFrom string    `gorm:"column:active_from;size:5"`
	ActiveTo   string    `gorm:"column:active_to;size:5"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (screenModel) TableName() string { return "screens" }

func ScreenModel() any { return &screenModel{} }

func (r *ScreenRepository) GetByID(ctx context.Context, id int64) (*domain.Screen, error) {
	var m screenModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &domain.Screen{
		ID:         m.ID,
		Name:       m.Name,
		OwnerID:    m.OwnerID,
		Status:     domain.ScreenStatus(m.Status),
		HourlyRate: m.HourlyRate,
		ActiveFrom: m.ActiveFrom,
		ActiveTo:   m.ActiveTo,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}
