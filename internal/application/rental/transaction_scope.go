package rental

import (
	"context"

	"github.com/rentora/backend/internal/domain/rental"
)

// TransactionScope provides transactional access to the reservation
// repository so guarded updates and deletes run against a locked row.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repository access within a transaction.
type TransactionalRepositories interface {
	// ReservationRepo returns the reservation repository scoped to the current transaction
	ReservationRepo() rental.ReservationRepository
}

// NoOpTransactionScope executes the scoped function without a transaction.
type NoOpTransactionScope struct {
	reservationRepo rental.ReservationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repository.
func NewNoOpTransactionScope(reservationRepo rental.ReservationRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{reservationRepo: reservationRepo}
}

// Execute runs fn directly against the configured repositories.
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReservationRepo implements TransactionalRepositories
func (s *NoOpTransactionScope) ReservationRepo() rental.ReservationRepository {
	return s.reservationRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
