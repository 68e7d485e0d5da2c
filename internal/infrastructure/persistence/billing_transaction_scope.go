package persistence

import (
	"context"

	appbilling "github.com/rentora/backend/internal/application/billing"
	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions. Every invoice numbering decision runs inside one of
// these so the owner row lock and the ledger insert commit together.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope.
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormBillingRepositories{tx: tx}
		return fn(repos)
	})
}

// gormBillingRepositories provides access to the billing repositories within
// a transaction.
type gormBillingRepositories struct {
	tx *gorm.DB
}

// OwnerRepo returns the owner repository scoped to the current transaction.
func (r *gormBillingRepositories) OwnerRepo() rental.OwnerRepository {
	return NewGormOwnerRepository(r.tx)
}

// ReservationRepo returns the reservation repository scoped to the current transaction.
func (r *gormBillingRepositories) ReservationRepo() rental.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

// PropertyRepo returns the property repository scoped to the current transaction.
func (r *gormBillingRepositories) PropertyRepo() rental.PropertyRepository {
	return NewGormPropertyRepository(r.tx)
}

// InvoiceRepo returns the invoice ledger repository scoped to the current transaction.
func (r *gormBillingRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Transaction runs fn inside a nested transaction. GORM emits SAVEPOINT and
// ROLLBACK TO SAVEPOINT here, so a failed write inside fn does not leave the
// enclosing Postgres transaction in its aborted state.
func (r *gormBillingRepositories) Transaction(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return r.tx.WithContext(ctx).Transaction(func(nested *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: nested})
	})
}

// Ensure GormBillingTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)

// Ensure gormBillingRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
