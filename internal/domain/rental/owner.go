package rental

import (
	"time"

	"github.com/rentora/backend/internal/domain/shared"
)

// Owner represents a property owner. Each owner carries its own invoice
// series; LastInvoiceNumber is the per-owner counter and the single source
// of truth for the next sequence number to allocate. It is mutated only by
// the invoice allocator and its reversal path, always under a row lock.
type Owner struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Email             string    `gorm:"type:varchar(200)"`
	LastInvoiceNumber int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Owner) TableName() string {
	return "owners"
}

// NewOwner creates a new owner with an empty invoice series
func NewOwner(name, email string) (*Owner, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner name cannot be empty")
	}
	now := time.Now()
	return &Owner{
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
