package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apprental "github.com/rentora/backend/internal/application/rental"
	"github.com/rentora/backend/internal/interfaces/http/dto"
	"github.com/rentora/backend/internal/interfaces/http/middleware"
)

// ReservationHandler handles reservation API endpoints
type ReservationHandler struct {
	BaseHandler
	service *apprental.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(service *apprental.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes registers reservation routes
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.GET("", h.List)
		reservations.POST("", h.Create)
		reservations.GET("/:id", h.Get)
		reservations.PUT("/:id", h.Update)
		reservations.DELETE("/:id", h.Delete)
	}
}

// parseID parses the :id path parameter
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(raw string) (*time.Time, error) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

// parseOwnerIDQuery parses an optional owner_id query parameter
func parseOwnerIDQuery(c *gin.Context) (*int64, bool) {
	raw := c.Query("owner_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

// List returns reservations, optionally filtered by owner and stay dates
func (h *ReservationHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	listReq.Normalize()

	ownerID, ok := parseOwnerIDQuery(c)
	if !ok {
		h.BadRequest(c, "Invalid owner_id")
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	reservations, total, err := h.service.List(c.Request.Context(), apprental.ListFilter{
		OwnerID:  ownerID,
		FromDate: from,
		ToDate:   to,
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, reservations, total, listReq.Page, listReq.PageSize)
}

// Get returns a single reservation
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	reservation, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reservation)
}

// Create creates a new reservation
func (h *ReservationHandler) Create(c *gin.Context) {
	var req apprental.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reservation, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, reservation)
}

// Update applies a partial update to a reservation. Once the reservation is
// invoiced the protected fields are rejected with the offending field names.
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	var req apprental.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reservation, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reservation)
}

// Delete removes a reservation unless it has been invoiced
func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
