package repository

import (
	"context"
	"errors"
	"time"

	"adscreen/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	Reference         string     `gorm:"column:reference;uniqueIndex;size:16"`
	ScreenID          int64      `gorm:"column:screen_id;index:idx_booking_screen_status,priority:1"`
	AdvertiserID      int64      `gorm:"column:advertiser_id;index"`
	ContentID         int64      `gorm:"column:content_id"`
	StartDatetime     time.Time  `gorm:"column:start_datetime"`
	EndDatetime       time.Time  `gorm:"column:end_datetime"`
	Status            string     `gorm:"column:status;index:idx_booking_screen_status,priority:2"`
	PriceAmount       float64    `gorm:"column:price_amount"`
	OwnerEarnings     float64    `gorm:"column:owner_earnings"`
	CommissionAmount  float64    `gorm:"column:commission_amount"`
	CommissionPercent float64    `gorm:"column:commission_percent"`
	HoldExpiresAt     *time.Time `gorm:"column:hold_expires_at"`
	ConfirmedAt       *time.Time `gorm:"column:confirmed_at"`
	CancelledAt       *time.Time `gorm:"column:cancelled_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

// BookingModel is exported for AutoMigrate wiring in cmd and tests.
func BookingModel() any { return &bookingModel{} }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                m.ID,
		Reference:         m.Reference,
		ScreenID:          m.ScreenID,
		AdvertiserID:      m.AdvertiserID,
		ContentID:         m.ContentID,
		StartDatetime:     m.StartDatetime,
		EndDatetime:       m.EndDatetime,
		Status:            domain.BookingStatus(m.Status),
		PriceAmount:       m.PriceAmount,
		OwnerEarnings:     m.OwnerEarnings,
		CommissionAmount:  m.CommissionAmount,
		CommissionPercent: m.CommissionPercent,
		HoldExpiresAt:     m.HoldExpiresAt,
		ConfirmedAt:       m.ConfirmedAt,
		CancelledAt:       m.CancelledAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                b.ID,
		Reference:         b.Reference,
		ScreenID:          b.ScreenID,
		AdvertiserID:      b.AdvertiserID,
		ContentID:         b.ContentID,
		StartDatetime:     b.StartDatetime,
		EndDatetime:       b.EndDatetime,
		Status:            string(b.Status),
		PriceAmount:       b.PriceAmount,
		OwnerEarnings:     b.OwnerEarnings,
		CommissionAmount:  b.CommissionAmount,
		CommissionPercent: b.CommissionPercent,
		HoldExpiresAt:     b.HoldExpiresAt,
		ConfirmedAt:       b.ConfirmedAt,
		CancelledAt:       b.CancelledAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, ref string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Where("reference = ?", ref).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// occupyingCond matches bookings that block their range at the given
// instant: CONFIRMED, or HELD with an unexpired hold. Evaluated against
// live state on every call, never a snapshot.
const occupyingCond = `status = 'CONFIRMED' OR (status = 'HELD' AND hold_expires_at > ?)`

// FindConflicting returns the first occupying booking on the screen whose
// [start, end) range intersects the requested one. Half-open overlap:
// existing.start < end AND existing.end > start.
func (r *BookingRepository) FindConflicting(ctx context.Context, screenID int64, start, end, now time.Time) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).
		Where("screen_id = ?", screenID).
		Where("("+occupyingCond+")", now).
		Where("start_datetime < ? AND end_datetime > ?", end, start).
		Order("start_datetime").
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// OccupiedRanges lists the occupying bookings on a screen intersecting
// [from, to), ordered by start. Feeds the slot index.
func (r *BookingRepository) OccupiedRanges(ctx context.Context, screenID int64, from, to, now time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Where("screen_id = ?", screenID).
		Where("("+occupyingCond+")", now).
		Where("start_datetime < ? AND end_datetime > ?", to, from).
		Order("start_datetime").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ExpireStale transitions every stale HELD row to EXPIRED. The WHERE clause
// makes the update a no-op against rows that some concurrent verification
// has already flipped to CONFIRMED, so confirmation always wins the race.
func (r *BookingRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("status = ? AND hold_expires_at <= ?", string(domain.BookingHeld), now).
		Updates(map[string]any{
			"status":          string(domain.BookingExpired),
			"hold_expires_at": nil,
			"updated_at":      now,
		})
	return tx.RowsAffected, tx.Error
}

// ExpireStaleForScreen is the per-screen variant run inside the hold
// manager's critical section before the overlap check, so a stale hold
// never blocks a fresh one under the exclusion constraint.
func (r *BookingRepository) ExpireStaleForScreen(ctx context.Context, screenID int64, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("screen_id = ? AND status = ? AND hold_expires_at <= ?", screenID, string(domain.BookingHeld), now).
		Updates(map[string]any{
			"status":          string(domain.BookingExpired),
			"hold_expires_at": nil,
			"updated_at":      now,
		})
	return tx.RowsAffected, tx.Error
}

// ConfirmIfHeld is the single conditional transition HELD -> CONFIRMED.
// Returns false when the row was not a live hold anymore; the caller
// decides between idempotent success and HoldExpired.
func (r *BookingRepository) ConfirmIfHeld(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ? AND hold_expires_at > ?", bookingID, string(domain.BookingHeld), now).
		Updates(map[string]any{
			"status":          string(domain.BookingConfirmed),
			"hold_expires_at": nil,
			"confirmed_at":    now,
			"updated_at":      now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// CancelIfHeld performs the user-initiated HELD -> CANCELLED transition with
// the same compare-and-swap shape as ConfirmIfHeld.
func (r *BookingRepository) CancelIfHeld(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ? AND hold_expires_at > ?", bookingID, string(domain.BookingHeld), now).
		Updates(map[string]any{
			"status":          string(domain.BookingCancelled),
			"hold_expires_at": nil,
			"cancelled_at":    now,
			"updated_at":      now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// CancelConfirmed is the admin/owner path for CONFIRMED -> CANCELLED.
func (r *BookingRepository) CancelConfirmed(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", bookingID, string(domain.BookingConfirmed)).
		Updates(map[string]any{
			"status":       string(domain.BookingCancelled),
			"cancelled_at": now,
			"updated_at":   now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *BookingRepository) ListByAdvertiser(ctx context.Context, advertiserID int64, limit, offset int) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Where("advertiser_id = ?", advertiserID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
