package billing

import (
	"context"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
)

// TransactionScope provides transactional access to the invoicing
// repositories. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and are
// committed or rolled back atomically.
//
// Invoice numbering relies on this: the owner row lock taken through
// OwnerRepo().FindByIDForUpdate is only meaningful for the lifetime of the
// surrounding transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// OwnerRepo returns the owner repository scoped to the current transaction
	OwnerRepo() rental.OwnerRepository
	// ReservationRepo returns the reservation repository scoped to the current transaction
	ReservationRepo() rental.ReservationRepository
	// PropertyRepo returns the property repository scoped to the current transaction
	PropertyRepo() rental.PropertyRepository
	// InvoiceRepo returns the invoice ledger repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// Transaction runs fn inside a nested transaction (a savepoint on
	// Postgres). A failed statement aborts the enclosing Postgres
	// transaction until rolled back, so any write whose failure must not
	// take down the surrounding work has to run through here.
	Transaction(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope executes the scoped function without an actual
// transaction. Useful for tests with mocked repositories.
type NoOpTransactionScope struct {
	ownerRepo       rental.OwnerRepository
	reservationRepo rental.ReservationRepository
	propertyRepo    rental.PropertyRepository
	invoiceRepo     billing.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	ownerRepo rental.OwnerRepository,
	reservationRepo rental.ReservationRepository,
	propertyRepo rental.PropertyRepository,
	invoiceRepo billing.InvoiceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ownerRepo:       ownerRepo,
		reservationRepo: reservationRepo,
		propertyRepo:    propertyRepo,
		invoiceRepo:     invoiceRepo,
	}
}

// Execute runs fn directly against the configured repositories.
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OwnerRepo implements TransactionalRepositories
func (s *NoOpTransactionScope) OwnerRepo() rental.OwnerRepository { return s.ownerRepo }

// ReservationRepo implements TransactionalRepositories
func (s *NoOpTransactionScope) ReservationRepo() rental.ReservationRepository {
	return s.reservationRepo
}

// PropertyRepo implements TransactionalRepositories
func (s *NoOpTransactionScope) PropertyRepo() rental.PropertyRepository { return s.propertyRepo }

// InvoiceRepo implements TransactionalRepositories
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository { return s.invoiceRepo }

// Transaction runs fn directly; there is no transaction to nest in.
func (s *NoOpTransactionScope) Transaction(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Ensure NoOpTransactionScope implements both interfaces
var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
