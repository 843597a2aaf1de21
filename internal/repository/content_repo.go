package repository

import (
	"context"
	"time"

	"adscreen/internal/domain"

	"gorm.io/gorm"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

type contentModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	UploaderID int64     `gorm:"column:uploader_id;index"`
	Title      string    `gorm:"column:title"`
	Status     string    `gorm:"column:status"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (contentModel) TableName() string { return "contents" }

func ContentModel() any { return &contentModel{} }

func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*domain.Content, error) {
	var m contentModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &domain.Content{
		ID:         m.ID,
		UploaderID: m.UploaderID,
		Title:      m.Title,
		Status:     domain.ContentStatus(m.Status),
		CreatedAt:  m.CreatedAt,
	}, nil
}
