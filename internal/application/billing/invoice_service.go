package billing

import (
	"context"
	"time"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceService issues and reverses invoice numbers for reservations.
// All numbering goes through the owner's counter under a row lock; the
// invoice ledger is the independent cross-check against that counter.
type InvoiceService struct {
	scope           TransactionScope
	reservationRepo rental.ReservationRepository
	invoiceRepo     billing.InvoiceRepository
	audit           AuditLogger
	logger          *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	scope TransactionScope,
	reservationRepo rental.ReservationRepository,
	invoiceRepo billing.InvoiceRepository,
	audit AuditLogger,
	logger *zap.Logger,
) *InvoiceService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &InvoiceService{
		scope:           scope,
		reservationRepo: reservationRepo,
		invoiceRepo:     invoiceRepo,
		audit:           audit,
		logger:          logger.Named("invoice"),
	}
}

// InvoiceResult is the outcome of a successful invoice generation
type InvoiceResult struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
}

// ReversalResult is the outcome of a successful invoice deletion
type ReversalResult struct {
	LastInvoiceNumber int `json:"last_invoice_number"`
}

// reconcileNextSeq computes the next free sequence number for an owner by
// reconciling three independent signals: the owner counter, the ledger
// maximum and the maximum carried by the owner's reservations. Taking the
// max tolerates drift left behind by a partial failure at the cost of a
// rare skipped number; a number is never reused. The caller must hold the
// owner row lock.
func reconcileNextSeq(ctx context.Context, repos TransactionalRepositories, owner *rental.Owner) (int, error) {
	prefix := billing.Series(owner.ID) + "/"

	ledgerMax, err := repos.InvoiceRepo().MaxSeq(ctx, prefix)
	if err != nil {
		return 0, err
	}
	reservationMax, err := repos.ReservationRepo().MaxInvoiceSeq(ctx, owner.ID, prefix)
	if err != nil {
		return 0, err
	}

	last := owner.LastInvoiceNumber
	if ledgerMax > last {
		last = ledgerMax
	}
	if reservationMax > last {
		last = reservationMax
	}
	return last + 1, nil
}

// bindInvoice writes the ledger entry and stamps the reservation. If
// writing the invoice date fails the reservation update is retried with
// the number alone; the number is already consumed at that point and
// forward progress wins over strict atomicity of the date column. The
// stamp runs under a savepoint: a failed statement would otherwise abort
// the enclosing Postgres transaction and doom the retry.
func (s *InvoiceService) bindInvoice(ctx context.Context, repos TransactionalRepositories, reservationID int64, number string, issued time.Time) (*InvoiceResult, error) {
	if err := repos.InvoiceRepo().Save(ctx, billing.NewInvoice(number, reservationID)); err != nil {
		return nil, err
	}
	err := repos.Transaction(ctx, func(r TransactionalRepositories) error {
		return r.ReservationRepo().SetInvoice(ctx, reservationID, number, issued)
	})
	if err != nil {
		s.logger.Warn("invoice date write failed, retrying with number only",
			zap.Int64("reservation_id", reservationID),
			zap.String("invoice_number", number),
			zap.Error(err),
		)
		if err := repos.ReservationRepo().SetInvoiceNumberOnly(ctx, reservationID, number); err != nil {
			return nil, err
		}
		return &InvoiceResult{InvoiceNumber: number}, nil
	}
	return &InvoiceResult{InvoiceNumber: number, InvoiceDate: &issued}, nil
}

// Generate allocates the next invoice number of the reservation's owner and
// applies it to the reservation, atomically. Calling it twice for the same
// reservation fails with ALREADY_INVOICED on the second call.
func (s *InvoiceService) Generate(ctx context.Context, reservationID int64) (*InvoiceResult, error) {
	var result *InvoiceResult

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation == nil {
			return shared.NewDomainError("NOT_FOUND", "Reservation not found")
		}
		if reservation.IsInvoiced() {
			return billing.ErrAlreadyInvoiced
		}
		if !reservation.PaymentMethod.Invoiceable() {
			return billing.ErrNotInvoiceable
		}

		ownerID, err := repos.PropertyRepo().OwnerIDOf(ctx, reservation.PropertyID)
		if err != nil {
			return err
		}
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
		if err := repos.OwnerRepo().UpdateLastInvoiceNumber(ctx, owner.ID, nextSeq); err != nil {
			return err
		}

		number := billing.FormatNumber(owner.ID, nextSeq)
		result, err = s.bindInvoice(ctx, repos, reservation.ID, number, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice generated",
		zap.Int64("reservation_id", reservationID),
		zap.String("invoice_number", result.InvoiceNumber),
	)
	s.audit.Record(ctx, "invoice", "reservations", reservationID,
		nil, result, "Invoice generated for reservation")
	return result, nil
}

// DeleteLast reverses the most recently allocated invoice of the
// reservation's owner. Only the tail of the series may be reversed so the
// freed number is reused by the next allocation and the series stays
// gapless.
func (s *InvoiceService) DeleteLast(ctx context.Context, reservationID int64) (*ReversalResult, error) {
	var result *ReversalResult
	var removedNumber string

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation == nil {
			return shared.NewDomainError("NOT_FOUND", "Reservation not found")
		}
		if !reservation.IsInvoiced() {
			return billing.ErrNoInvoice
		}
		seq, err := billing.ParseSeq(*reservation.InvoiceNumber)
		if err != nil {
			return err
		}

		ownerID, err := repos.PropertyRepo().OwnerIDOf(ctx, reservation.PropertyID)
		if err != nil {
			return err
		}
		owner, err := repos.OwnerRepo().FindByIDForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return shared.NewDomainError("NOT_FOUND", "Owner not found")
		}

		prefix := billing.Series(owner.ID) + "/"
		maxSeq, err := repos.ReservationRepo().MaxInvoiceSeq(ctx, owner.ID, prefix)
		if err != nil {
			return err
		}
		ledgerMax, err := repos.InvoiceRepo().MaxSeq(ctx, prefix)
		if err != nil {
			return err
		}
		if ledgerMax > maxSeq {
			maxSeq = ledgerMax
		}
		if seq != maxSeq {
			return billing.ErrNotLastInSeries
		}

		removed, err := repos.InvoiceRepo().DeleteByReservation(ctx, reservation.ID)
		if err != nil {
			return err
		}
		if removed == 0 {
			// Ledger rows written before the reservation id was recorded
			// are matched by number instead.
			if _, err := repos.InvoiceRepo().DeleteByNumber(ctx, *reservation.InvoiceNumber); err != nil {
				return err
			}
		}
		if err := repos.ReservationRepo().ClearInvoice(ctx, reservation.ID); err != nil {
			return err
		}
		if err := repos.OwnerRepo().UpdateLastInvoiceNumber(ctx, owner.ID, maxSeq-1); err != nil {
			return err
		}

		removedNumber = *reservation.InvoiceNumber
		result = &ReversalResult{LastInvoiceNumber: maxSeq - 1}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice deleted",
		zap.Int64("reservation_id", reservationID),
		zap.String("invoice_number", removedNumber),
	)
	s.audit.Record(ctx, "invoice_delete", "reservations", reservationID,
		map[string]string{"invoice_number": removedNumber}, nil, "Last invoice of series deleted")
	return result, nil
}

// PendingFilter narrows the pending-invoice queries
type PendingFilter struct {
	OwnerID  *int64
	FromDate *time.Time
	ToDate   *time.Time
}

// PendingCount returns how many reservations matching the filter are still
// waiting to be invoiced.
func (s *InvoiceService) PendingCount(ctx context.Context, filter PendingFilter) (int64, error) {
	return s.reservationRepo.CountUninvoiced(ctx, rental.ReservationFilter{
		OwnerID:  filter.OwnerID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	})
}

// InvoiceResponse represents a ledger entry in API responses
type InvoiceResponse struct {
	ID            int64     `json:"id"`
	Number        string    `json:"number"`
	ReservationID int64     `json:"reservation_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// List returns ledger entries, newest first, with the total count.
func (s *InvoiceService) List(ctx context.Context, from, to *time.Time, page, pageSize int) ([]InvoiceResponse, int64, error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, from, to, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		responses[i] = InvoiceResponse{
			ID:            inv.ID,
			Number:        inv.Number,
			ReservationID: inv.ReservationID,
			CreatedAt:     inv.CreatedAt,
		}
	}
	return responses, total, nil
}
