package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rentora/backend/internal/domain/shared"
)

// Billing-specific domain errors
var (
	ErrAlreadyInvoiced = shared.NewDomainError("ALREADY_INVOICED", "Reservation already carries an invoice number")
	ErrNoInvoice       = shared.NewDomainError("NO_INVOICE", "Reservation has no invoice to delete")
	ErrNotLastInSeries = shared.NewDomainError("NOT_LAST_IN_SERIES", "Only the last invoice of a series can be deleted")
	ErrInvalidNumber   = shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number is malformed")
	ErrNotInvoiceable  = shared.NewDomainError("NOT_INVOICEABLE", "Reservation payment method is not invoiceable")
)

// Series returns the invoice series identifier for an owner. It is derived
// deterministically from the owner id and never stored.
func Series(ownerID int64) string {
	return fmt.Sprintf("FR%02d", ownerID)
}

// FormatNumber renders a full invoice number, e.g. FR07/014 for owner 7,
// sequence 14.
func FormatNumber(ownerID int64, seq int) string {
	return fmt.Sprintf("%s/%03d", Series(ownerID), seq)
}

// ParseSeq extracts the sequence number from a full invoice number. The
// series part is not validated against an owner here; callers that care
// match the prefix themselves.
func ParseSeq(number string) (int, error) {
	idx := strings.LastIndex(number, "/")
	if idx < 0 || idx == len(number)-1 {
		return 0, ErrInvalidNumber
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil || seq <= 0 {
		return 0, ErrInvalidNumber
	}
	return seq, nil
}

// Invoice is an entry in the append-only invoice ledger. The ledger is
// independent of the reservation table and cross-checks the per-owner
// counter: the counter must never be behind the ledger's maximum sequence.
type Invoice struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Number        string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	ReservationID int64     `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a ledger entry for an issued invoice number
func NewInvoice(number string, reservationID int64) *Invoice {
	return &Invoice{
		Number:        number,
		ReservationID: reservationID,
		CreatedAt:     time.Now(),
	}
}

// Seq returns the sequence number encoded in the entry's invoice number
func (i *Invoice) Seq() (int, error) {
	return ParseSeq(i.Number)
}
