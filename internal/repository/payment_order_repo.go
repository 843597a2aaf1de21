package repository

import (
	"context"
	"errors"
	"time"

	"adscreen/internal/domain"

	"gorm.io/gorm"
)

type PaymentOrderRepository struct {
	db *gorm.DB
}

func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

type paymentOrderModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	BookingID        int64     `gorm:"column:booking_id;index"`
	GatewayOrderID   string    `gorm:"column:gateway_order_id;uniqueIndex;size:64"`
	GatewayPaymentID string    `gorm:"column:gateway_payment_id;size:64"`
	Amount           float64   `gorm:"column:amount"`
	Currency         string    `gorm:"column:currency;size:8"`
	Status           string    `gorm:"column:status;index"`
	FailureReason    string    `gorm:"column:failure_reason;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (paymentOrderModel) TableName() string { return "payment_orders" }

func PaymentOrderModel() any { return &paymentOrderModel{} }

func toDomainOrder(m paymentOrderModel) *domain.PaymentOrder {
	return &domain.PaymentOrder{
		ID:               m.ID,
		BookingID:        m.BookingID,
		GatewayOrderID:   m.GatewayOrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Status:           domain.PaymentOrderStatus(m.Status),
		FailureReason:    m.FailureReason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *PaymentOrderRepository) Create(ctx context.Context, o *domain.PaymentOrder) error {
	m := paymentOrderModel{
		BookingID:      o.BookingID,
		GatewayOrderID: o.GatewayOrderID,
		Amount:         o.Amount,
		Currency:       o.Currency,
		Status:         string(o.Status),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*o = *toDomainOrder(m)
	return nil
}

func (r *PaymentOrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	var m paymentOrderModel
	tx := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainOrder(m), nil
}

// FindOpenByBooking returns the booking's CREATED order if one exists.
// Backs the idempotent createOrder contract: at most one open order per
// held booking; FAILED orders do not count.
func (r *PaymentOrderRepository) FindOpenByBooking(ctx context.Context, bookingID int64) (*domain.PaymentOrder, error) {
	var m paymentOrderModel
	tx := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, string(domain.PaymentOrderCreated)).
		Order("created_at desc").
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainOrder(m), nil
}

func (r *PaymentOrderRepository) MarkVerified(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&paymentOrderModel{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(map[string]any{
			"status":             string(domain.PaymentOrderVerified),
			"gateway_payment_id": gatewayPaymentID,
			"updated_at":         now,
		}).Error
}

func (r *PaymentOrderRepository) MarkFailed(ctx context.Context, gatewayOrderID, reason string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&paymentOrderModel{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(map[string]any{
			"status":         string(domain.PaymentOrderFailed),
			"failure_reason": reason,
			"updated_at":     now,
		}).Error
}
