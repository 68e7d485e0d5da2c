package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/rentora/backend/internal/application/billing"
	"github.com/rentora/backend/internal/interfaces/http/dto"
	"github.com/rentora/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices     *appbilling.InvoiceService
	batch        *appbilling.BatchService
	batchTimeout time.Duration
}

// NewInvoiceHandler creates a new InvoiceHandler. A zero batchTimeout leaves
// batch runs bounded only by the request context.
func NewInvoiceHandler(invoices *appbilling.InvoiceService, batch *appbilling.BatchService, batchTimeout time.Duration) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, batch: batch, batchTimeout: batchTimeout}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reservations/:id/invoice", h.Generate)
	rg.DELETE("/reservations/:id/invoice", h.DeleteLast)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.POST("/batch", h.Batch)
		invoices.GET("/pending-count", h.PendingCount)
	}
}

// Generate issues the next invoice number of the owner's series to a
// reservation
func (h *InvoiceHandler) Generate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	result, err := h.invoices.Generate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// DeleteLast reverses a reservation's invoice. Only the highest-numbered
// invoice of a series can be reversed.
func (h *InvoiceHandler) DeleteLast(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid reservation ID")
		return
	}

	result, err := h.invoices.DeleteLast(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// BatchRequest narrows which reservations a batch run invoices
type BatchRequest struct {
	OwnerID *int64 `json:"owner_id" binding:"omitempty,gt=0"`
	From    string `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To      string `json:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (r BatchRequest) toFilter() (appbilling.BatchFilter, error) {
	filter := appbilling.BatchFilter{OwnerID: r.OwnerID}
	if r.From != "" {
		from, err := parseDate(r.From)
		if err != nil {
			return filter, err
		}
		filter.FromDate = from
	}
	if r.To != "" {
		to, err := parseDate(r.To)
		if err != nil {
			return filter, err
		}
		filter.ToDate = to
	}
	return filter, nil
}

// Batch invoices every eligible reservation matching the filter. Partial
// failure is reported per item, not as a request failure.
func (h *InvoiceHandler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	ctx := c.Request.Context()
	if h.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.batchTimeout)
		defer cancel()
	}

	result, err := h.batch.Generate(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PendingCount returns how many reservations still await invoicing
func (h *InvoiceHandler) PendingCount(c *gin.Context) {
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

	count, err := h.invoices.PendingCount(c.Request.Context(), appbilling.PendingFilter{
		OwnerID:  ownerID,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"pending": count})
}

// List returns invoice ledger entries, newest first
func (h *InvoiceHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	listReq.Normalize()

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

	invoices, total, err := h.invoices.List(c.Request.Context(), from, to, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, listReq.Page, listReq.PageSize)
}
