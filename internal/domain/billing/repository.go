package billing

import (
	"context"
	"time"
)

// InvoiceRepository defines persistence operations for the invoice ledger
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	FindByReservation(ctx context.Context, reservationID int64) (*Invoice, error)
	FindAll(ctx context.Context, from, to *time.Time, page, pageSize int) ([]Invoice, error)
	Count(ctx context.Context, from, to *time.Time) (int64, error)
	// MaxSeq returns the highest sequence number recorded in the ledger for
	// the given series prefix (e.g. "FR07/"), or 0 when the series is empty.
	MaxSeq(ctx context.Context, seriesPrefix string) (int, error)
	// DeleteByReservation removes the ledger entry for a reservation,
	// returning the number of rows removed. Used only by the delete-last-
	// invoice reversal path.
	DeleteByReservation(ctx context.Context, reservationID int64) (int64, error)
	DeleteByNumber(ctx context.Context, number string) (int64, error)
}
