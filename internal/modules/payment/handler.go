package payment

import (
	"errors"
	"net/http"

	"adscreen/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/orders", h.CreateOrder)
	rg.POST("/payments/verify", h.VerifyPayment)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req.BookingID, c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"order": CreateOrderResponse{
		GatewayOrderID: order.GatewayOrderID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Status:         string(order.Status),
	}})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.VerifyAndConfirm(c.Request.Context(), req.GatewayOrderID, req.GatewayPaymentID, req.Signature, req.BookingID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": gin.H{
		"id":           b.ID,
		"reference":    b.Reference,
		"status":       string(b.EffectiveStatus(h.service.Now())),
		"confirmed_at": b.ConfirmedAt,
	}})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotHeld):
		response.Error(c, http.StatusConflict, "BOOKING_NOT_HELD", "Booking is not held or the hold has expired; please restart booking")
	case errors.Is(err, ErrHoldExpired):
		response.Error(c, http.StatusConflict, "HOLD_EXPIRED", "Hold expired before payment verification; please restart booking")
	case errors.Is(err, ErrInvalidSignature):
		response.Error(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Payment signature verification failed")
	case errors.Is(err, ErrGatewayUnavailable):
		response.Error(c, http.StatusBadGateway, "PAYMENT_GATEWAY_UNAVAILABLE", "Payment gateway is unavailable, please retry")
	case errors.Is(err, ErrOrderMismatch):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Order does not belong to this booking")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or order not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process payment")
	}
}
