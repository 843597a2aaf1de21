package slots

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
	rg.GET("/screens/:id/slots", h.GetSlots)
}

func (h *Handler) GetSlots(c *gin.Context) {
	screenID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid screen id")
		return
	}
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter 'date' is required (YYYY-MM-DD)")
		return
	}

	result, err := h.service.GetSlots(c.Request.Context(), screenID, date)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date format, expected YYYY-MM-DD")
		case errors.Is(err, ErrScreenNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Screen not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load slots")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"screen_id": screenID,
		"date":      date,
		"slots":     result,
	})
}
