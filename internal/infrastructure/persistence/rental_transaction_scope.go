package persistence

import (
	"context"

	apprental "github.com/rentora/backend/internal/application/rental"
	"github.com/rentora/backend/internal/domain/rental"
	"gorm.io/gorm"
)

// GormRentalTransactionScope implements the rental TransactionScope using
// GORM transactions. Reservation updates and deletes run inside it so the
// invoiced-state check and the write cannot race with invoicing.
type GormRentalTransactionScope struct {
	db *gorm.DB
}

// NewGormRentalTransactionScope creates a new GormRentalTransactionScope.
func NewGormRentalTransactionScope(db *gorm.DB) *GormRentalTransactionScope {
	return &GormRentalTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormRentalTransactionScope) Execute(ctx context.Context, fn func(repos apprental.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormRentalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormRentalRepositories provides access to the rental repositories within a
// transaction.
type gormRentalRepositories struct {
	tx *gorm.DB
}

// ReservationRepo returns the reservation repository scoped to the current transaction.
func (r *gormRentalRepositories) ReservationRepo() rental.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

// Ensure GormRentalTransactionScope implements TransactionScope
var _ apprental.TransactionScope = (*GormRentalTransactionScope)(nil)

// Ensure gormRentalRepositories implements TransactionalRepositories
var _ apprental.TransactionalRepositories = (*gormRentalRepositories)(nil)
