package persistence

import (
	"context"
	"errors"

	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id int64) (*rental.Property, error) {
	var property rental.Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// OwnerIDOf resolves the owner of a property
func (r *GormPropertyRepository) OwnerIDOf(ctx context.Context, propertyID int64) (int64, error) {
	var property rental.Property
	err := r.db.WithContext(ctx).
		Select("id", "owner_id").
		First(&property, "id = ?", propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return property.OwnerID, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *rental.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ rental.PropertyRepository = (*GormPropertyRepository)(nil)
