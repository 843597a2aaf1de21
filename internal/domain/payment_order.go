package domain

import "time"

type PaymentOrderStatus string

const (
	PaymentOrderCreated  PaymentOrderStatus = "CREATED"
	PaymentOrderVerified PaymentOrderStatus = "VERIFIED"
	PaymentOrderFailed   PaymentOrderStatus = "FAILED"
)

// PaymentOrder correlates a HELD booking with a gateway order between order
// creation and payment resolution. Amount is the booking price snapshot.
type PaymentOrder struct {
	ID               int64              `json:"id"`
	BookingID        int64              `json:"booking_id"`
	GatewayOrderID   string             `json:"gateway_order_id"`
	GatewayPaymentID string             `json:"gateway_payment_id,omitempty"`
	Amount           float64            `json:"amount"`
	Currency         string             `json:"currency"`
	Status           PaymentOrderStatus `json:"status"`
	FailureReason    string             `json:"failure_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
