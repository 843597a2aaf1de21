package booking

import (
	"errors"
	"net/http"
	"strconv"

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
	rg.POST("/bookings", h.CreateHold)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/users/me/bookings", h.ListMyBookings)
	rg.PATCH("/bookings/:id/cancel", h.CancelHold)
}

func (h *Handler) CreateHold(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	advertiserID := c.GetInt64("user_id")
	b, err := h.service.CreateHold(c.Request.Context(), req, advertiserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": toBookingResponse(b, h.service.Now())})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b, h.service.Now())})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.service.ListMyBookings(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	now := h.service.Now()
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i], now))
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": out})
}

func (h *Handler) CancelHold(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	b, err := h.service.CancelHold(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": toBookingResponse(b, h.service.Now())})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var conflict *SlotConflictError
	if errors.As(err, &conflict) {
		response.ErrorWithDetails(c, http.StatusConflict, "SLOT_CONFLICT",
			"Requested range overlaps an existing booking",
			ConflictDetails{ConflictStart: conflict.ConflictStart, ConflictEnd: conflict.ConflictEnd})
		return
	}

	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking time range")
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "Requested range overlaps an existing booking")
	case errors.Is(err, ErrScreenUnavailable):
		response.Error(c, http.StatusConflict, "SCREEN_UNAVAILABLE", "Screen is not accepting bookings")
	case errors.Is(err, ErrContentNotBookable):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Content must exist, be approved and belong to you")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
	case errors.Is(err, ErrNotHeld):
		response.Error(c, http.StatusConflict, "BOOKING_NOT_HELD", "Booking is no longer held; please restart booking")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking")
	}
}
