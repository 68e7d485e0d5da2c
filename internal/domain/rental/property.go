package rental

import (
	"time"

	"github.com/rentora/backend/internal/domain/shared"
)

// Property represents a rental property belonging to an owner.
// Reservations resolve their invoice series through the property's owner.
type Property struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OwnerID   int64     `gorm:"not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Address   string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a new property for an owner
func NewProperty(ownerID int64, name, address string) (*Property, error) {
	if ownerID <= 0 {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property must belong to an owner")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property name cannot be empty")
	}
	now := time.Now()
	return &Property{
		OwnerID:   ownerID,
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
