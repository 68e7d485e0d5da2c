package rental

import (
	"context"
	"time"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
)

// OwnerService provides owner reads, mainly for inspecting invoice series.
type OwnerService struct {
	ownerRepo rental.OwnerRepository
}

// NewOwnerService creates a new OwnerService
func NewOwnerService(ownerRepo rental.OwnerRepository) *OwnerService {
	return &OwnerService{ownerRepo: ownerRepo}
}

// OwnerResponse represents an owner in API responses
type OwnerResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	InvoiceSeries     string    `json:"invoice_series"`
	LastInvoiceNumber int       `json:"last_invoice_number"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toOwnerResponse(o *rental.Owner) *OwnerResponse {
	return &OwnerResponse{
		ID:                o.ID,
		Name:              o.Name,
		Email:             o.Email,
		InvoiceSeries:     billing.Series(o.ID),
		LastInvoiceNumber: o.LastInvoiceNumber,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// Get returns an owner by id
func (s *OwnerService) Get(ctx context.Context, id int64) (*OwnerResponse, error) {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Owner not found")
	}
	return toOwnerResponse(owner), nil
}

// List returns all owners
func (s *OwnerService) List(ctx context.Context) ([]OwnerResponse, error) {
	owners, err := s.ownerRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]OwnerResponse, len(owners))
	for i, o := range owners {
		responses[i] = *toOwnerResponse(&o)
	}
	return responses, nil
}
