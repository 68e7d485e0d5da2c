package billing

import (
	"context"
	"time"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// BatchService invoices every eligible reservation matching a filter in one
// pass. Numbers are assigned per owner in ascending stay start date, so
// invoice numbers correlate with chronological occupancy rather than
// creation order. Each owner group is its own transaction: one owner's
// failure never rolls back another owner's invoices.
type BatchService struct {
	scope           TransactionScope
	reservationRepo rental.ReservationRepository
	audit           AuditLogger
	logger          *zap.Logger
}

// NewBatchService creates a new BatchService
func NewBatchService(
	scope TransactionScope,
	reservationRepo rental.ReservationRepository,
	audit AuditLogger,
	logger *zap.Logger,
) *BatchService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &BatchService{
		scope:           scope,
		reservationRepo: reservationRepo,
		audit:           audit,
		logger:          logger.Named("invoice_batch"),
	}
}

// BatchFilter narrows which reservations a batch run considers
type BatchFilter struct {
	OwnerID  *int64
	FromDate *time.Time
	ToDate   *time.Time
}

// BatchError describes one failed reservation or owner group in a batch run
type BatchError struct {
	ReservationID *int64 `json:"reservation_id,omitempty"`
	OwnerID       *int64 `json:"owner_id,omitempty"`
	Error         string `json:"error"`
}

// BatchResult reports a batch run: how many invoices were issued and
// exactly which items failed.
type BatchResult struct {
	Generated int          `json:"generated"`
	Errors    []BatchError `json:"errors"`
}

// Generate invoices every eligible reservation (cash or transfer payment,
// not yet invoiced) matching the filter.
func (s *BatchService) Generate(ctx context.Context, filter BatchFilter) (*BatchResult, error) {
	eligible, err := s.reservationRepo.FindUninvoiced(ctx, rental.ReservationFilter{
		OwnerID:  filter.OwnerID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	})
	if err != nil {
		return nil, err
	}

	// The query orders by owner then start date; GroupBy keeps that order
	// within each group, and ownerOrder keeps the group iteration stable.
	groups := lo.GroupBy(eligible, func(r rental.OwnedReservation) int64 { return r.OwnerID })
	ownerOrder := lo.Uniq(lo.Map(eligible, func(r rental.OwnedReservation, _ int) int64 { return r.OwnerID }))

	result := &BatchResult{Errors: []BatchError{}}
	for _, ownerID := range ownerOrder {
		generated, errs := s.generateForOwner(ctx, ownerID, groups[ownerID])
		result.Generated += generated
		result.Errors = append(result.Errors, errs...)
	}

	s.logger.Info("batch invoicing finished",
		zap.Int("eligible", len(eligible)),
		zap.Int("generated", result.Generated),
		zap.Int("failed", len(result.Errors)),
	)
	s.audit.Record(ctx, "invoice_batch", "reservations", 0, nil, result, "Batch invoice generation")
	return result, nil
}

// generateForOwner issues one gapless run of numbers for a single owner
// inside one transaction. The owner row is locked once for the whole group;
// the counter is reconciled once and advanced locally per reservation, then
// persisted at the end. Per-reservation failures are recorded and skipped
// so the rest of the group still gets invoiced.
func (s *BatchService) generateForOwner(ctx context.Context, ownerID int64, group []rental.OwnedReservation) (int, []BatchError) {
	var generated int
	var itemErrs []BatchError

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		owner, err := repos.OwnerRepo().FindByIDForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return shared.NewDomainError("NOT_FOUND", "Owner not found")
		}

		nextSeq, err := reconcileNextSeq(ctx, repos, owner)
		if err != nil {
			return err
		}
		last := nextSeq - 1
		issued := time.Now()

		// Every per-reservation write runs under its own savepoint: on
		// Postgres a failed statement aborts the whole transaction until
		// rolled back, which would turn one bad reservation into a failure
		// of the entire owner group.
		for _, reservation := range group {
			id := reservation.ID
			number := billing.FormatNumber(ownerID, last+1)

			err := repos.Transaction(ctx, func(r TransactionalRepositories) error {
				return r.InvoiceRepo().Save(ctx, billing.NewInvoice(number, id))
			})
			if err != nil {
				itemErrs = append(itemErrs, BatchError{ReservationID: &id, Error: err.Error()})
				continue
			}
			// The number is consumed once the ledger entry exists, even if
			// the reservation update below fails (a tolerated gap).
			last++

			err = repos.Transaction(ctx, func(r TransactionalRepositories) error {
				return r.ReservationRepo().SetInvoice(ctx, id, number, issued)
			})
			if err != nil {
				s.logger.Warn("invoice date write failed, retrying with number only",
					zap.Int64("reservation_id", id),
					zap.String("invoice_number", number),
					zap.Error(err),
				)
				err = repos.Transaction(ctx, func(r TransactionalRepositories) error {
					return r.ReservationRepo().SetInvoiceNumberOnly(ctx, id, number)
				})
				if err != nil {
					itemErrs = append(itemErrs, BatchError{ReservationID: &id, Error: err.Error()})
					continue
				}
			}
			generated++
		}

		if last >= nextSeq {
			return repos.OwnerRepo().UpdateLastInvoiceNumber(ctx, ownerID, last)
		}
		return nil
	})
	if err != nil {
		// The owner group rolled back as a unit; per-item bookkeeping from
		// inside the transaction no longer reflects committed state.
		s.logger.Error("owner group failed",
			zap.Int64("owner_id", ownerID),
			zap.Int("reservations", len(group)),
			zap.Error(err),
		)
		return 0, []BatchError{{OwnerID: &ownerID, Error: err.Error()}}
	}
	return generated, itemErrs
}
