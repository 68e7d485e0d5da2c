package handler

import (
	"github.com/gin-gonic/gin"
	apprental "github.com/rentora/backend/internal/application/rental"
)

// OwnerHandler handles owner API endpoints
type OwnerHandler struct {
	BaseHandler
	service *apprental.OwnerService
}

// NewOwnerHandler creates a new OwnerHandler
func NewOwnerHandler(service *apprental.OwnerService) *OwnerHandler {
	return &OwnerHandler{service: service}
}

// RegisterRoutes registers owner routes
func (h *OwnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	owners := rg.Group("/owners")
	{
		owners.GET("", h.List)
		owners.GET("/:id", h.Get)
	}
}

// List returns all owners with their invoice series state
func (h *OwnerHandler) List(c *gin.Context) {
	owners, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, owners)
}

// Get returns a single owner
func (h *OwnerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid owner ID")
		return
	}

	owner, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, owner)
}
