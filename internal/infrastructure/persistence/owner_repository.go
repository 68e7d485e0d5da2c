package persistence

import (
	"context"
	"errors"

	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOwnerRepository implements OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by its ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id int64) (*rental.Owner, error) {
	var owner rental.Owner
	if err := r.db.WithContext(ctx).First(&owner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &owner, nil
}

// FindByIDForUpdate loads the owner under an exclusive row lock. It must be
// called inside a transaction; the lock serializes invoice numbering for the
// owner's series.
func (r *GormOwnerRepository) FindByIDForUpdate(ctx context.Context, id int64) (*rental.Owner, error) {
	var owner rental.Owner
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&owner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &owner, nil
}

// FindAll returns all owners ordered by name
func (r *GormOwnerRepository) FindAll(ctx context.Context) ([]rental.Owner, error) {
	var owners []rental.Owner
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// Save creates or updates an owner
func (r *GormOwnerRepository) Save(ctx context.Context, owner *rental.Owner) error {
	return r.db.WithContext(ctx).Save(owner).Error
}

// UpdateLastInvoiceNumber persists the owner's high-water invoice counter
func (r *GormOwnerRepository) UpdateLastInvoiceNumber(ctx context.Context, id int64, last int) error {
	result := r.db.WithContext(ctx).
		Model(&rental.Owner{}).
		Where("id = ?", id).
		Update("last_invoice_number", last)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOwnerRepository implements OwnerRepository
var _ rental.OwnerRepository = (*GormOwnerRepository)(nil)
