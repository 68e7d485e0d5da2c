package rental

import (
	"context"
	"time"
)

// OwnerRepository defines persistence operations for owners
type OwnerRepository interface {
	FindByID(ctx context.Context, id int64) (*Owner, error)
	// FindByIDForUpdate loads the owner under an exclusive row lock
	// (SELECT ... FOR UPDATE). Every read or write of LastInvoiceNumber
	// must go through this method inside a transaction; the owner row is
	// the serialization point for invoice numbering.
	FindByIDForUpdate(ctx context.Context, id int64) (*Owner, error)
	FindAll(ctx context.Context) ([]Owner, error)
	Save(ctx context.Context, owner *Owner) error
	UpdateLastInvoiceNumber(ctx context.Context, id int64, last int) error
}

// ReservationFilter narrows reservation queries
type ReservationFilter struct {
	OwnerID  *int64
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}

// ReservationRepository defines persistence operations for reservations
type ReservationRepository interface {
	FindByID(ctx context.Context, id int64) (*Reservation, error)
	// FindByIDForUpdate locks the reservation row so invoicing cannot race
	// with a concurrent edit or delete.
	FindByIDForUpdate(ctx context.Context, id int64) (*Reservation, error)
	FindAll(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	Count(ctx context.Context, filter ReservationFilter) (int64, error)
	// FindUninvoiced returns reservations eligible for invoicing (cash or
	// transfer payment, no invoice number yet) matching the filter, joined
	// with their owner id and ordered by owner then stay start date.
	FindUninvoiced(ctx context.Context, filter ReservationFilter) ([]OwnedReservation, error)
	CountUninvoiced(ctx context.Context, filter ReservationFilter) (int64, error)
	// MaxInvoiceSeq returns the highest sequence number among the invoice
	// numbers carried by this owner's reservations for the given series
	// prefix, or 0 when none exist.
	MaxInvoiceSeq(ctx context.Context, ownerID int64, seriesPrefix string) (int, error)
	Save(ctx context.Context, reservation *Reservation) error
	// SetInvoice writes the invoice number and date onto a reservation.
	SetInvoice(ctx context.Context, id int64, number string, date time.Time) error
	// SetInvoiceNumberOnly writes the invoice number without the date; the
	// fallback path when the date write fails.
	SetInvoiceNumberOnly(ctx context.Context, id int64, number string) error
	// ClearInvoice removes the invoice number and date (reversal path).
	ClearInvoice(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// OwnedReservation pairs a reservation with the owner resolved through its
// property, as returned by the batch eligibility query.
type OwnedReservation struct {
	Reservation
	OwnerID int64
}

// PropertyRepository defines persistence operations for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id int64) (*Property, error)
	// OwnerIDOf resolves the owner of a property.
	OwnerIDOf(ctx context.Context, propertyID int64) (int64, error)
	Save(ctx context.Context, property *Property) error
}
