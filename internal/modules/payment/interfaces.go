package payment

import (
	"context"
	"time"

	"adscreen/internal/domain"
)

type bookingRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ConfirmIfHeld(ctx context.Context, bookingID int64, now time.Time) (bool, error)
}

type orderRepo interface {
	Create(ctx context.Context, o *domain.PaymentOrder) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error)
	FindOpenByBooking(ctx context.Context, bookingID int64) (*domain.PaymentOrder, error)
	MarkVerified(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) error
	MarkFailed(ctx context.Context, gatewayOrderID, reason string, now time.Time) error
}
