package payment

type CreateOrderRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type CreateOrderResponse struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
}

type VerifyPaymentRequest struct {
	BookingID        int64  `json:"booking_id" binding:"required"`
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}
