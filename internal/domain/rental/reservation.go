package rental

import (
	"strings"
	"time"

	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a reservation is paid
type PaymentMethod string

// Payment methods
const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodPlatform PaymentMethod = "platform"
)

// Invoiceable reports whether reservations paid with this method are
// eligible for invoice generation. Card and platform payments are settled
// externally and never invoiced here.
func (m PaymentMethod) Invoiceable() bool {
	return m == PaymentMethodCash || m == PaymentMethodTransfer
}

// Reservation represents a guest stay in a room of a property.
// Once InvoiceNumber is set the protected business fields become immutable
// and the reservation can no longer be deleted.
type Reservation struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	PropertyID    int64           `gorm:"not null;index"`
	RoomID        int64           `gorm:"not null;index"` // opaque reference, rooms are managed outside this service
	GuestID       int64           `gorm:"not null;index"`
	StartDate     time.Time       `gorm:"type:date;not null;index"`
	EndDate       time.Time       `gorm:"type:date;not null"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	Notes         string          `gorm:"type:text"`
	InvoiceNumber *string         `gorm:"type:varchar(20);index"`
	InvoiceDate   *time.Time      `gorm:"type:date"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// IsInvoiced reports whether an invoice number has been assigned
func (r *Reservation) IsInvoiced() bool {
	return r.InvoiceNumber != nil && *r.InvoiceNumber != ""
}

// Protected field names as exposed in API payloads and error messages.
// The set is a static configuration: these fields may not change once the
// reservation carries an invoice number.
const (
	FieldPrice         = "price"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldPropertyID    = "property_id"
	FieldRoomID        = "room_id"
	FieldGuestID       = "guest_id"
	FieldPaymentMethod = "payment_method"
)

// ProtectedFields lists every invoice-protected reservation field.
var ProtectedFields = []string{
	FieldPrice,
	FieldStartDate,
	FieldEndDate,
	FieldPropertyID,
	FieldRoomID,
	FieldGuestID,
	FieldPaymentMethod,
}

// ReservationUpdate carries the new values of a reservation update request.
// Nil pointers mean "leave unchanged".
type ReservationUpdate struct {
	PropertyID    *int64
	RoomID        *int64
	GuestID       *int64
	StartDate     *time.Time
	EndDate       *time.Time
	Price         *decimal.Decimal
	PaymentMethod *PaymentMethod
	Notes         *string
}

// ChangedProtectedFields returns the names of protected fields the update
// would change. Dates are compared by calendar day, prices numerically.
func (r *Reservation) ChangedProtectedFields(u ReservationUpdate) []string {
	var changed []string
	if u.Price != nil && !u.Price.Equal(r.Price) {
		changed = append(changed, FieldPrice)
	}
	if u.StartDate != nil && !sameDay(*u.StartDate, r.StartDate) {
		changed = append(changed, FieldStartDate)
	}
	if u.EndDate != nil && !sameDay(*u.EndDate, r.EndDate) {
		changed = append(changed, FieldEndDate)
	}
	if u.PropertyID != nil && *u.PropertyID != r.PropertyID {
		changed = append(changed, FieldPropertyID)
	}
	if u.RoomID != nil && *u.RoomID != r.RoomID {
		changed = append(changed, FieldRoomID)
	}
	if u.GuestID != nil && *u.GuestID != r.GuestID {
		changed = append(changed, FieldGuestID)
	}
	if u.PaymentMethod != nil && *u.PaymentMethod != r.PaymentMethod {
		changed = append(changed, FieldPaymentMethod)
	}
	return changed
}

// Apply writes the update onto the reservation. The caller is responsible
// for having run the protection check first.
func (r *Reservation) Apply(u ReservationUpdate) {
	if u.PropertyID != nil {
		r.PropertyID = *u.PropertyID
	}
	if u.RoomID != nil {
		r.RoomID = *u.RoomID
	}
	if u.GuestID != nil {
		r.GuestID = *u.GuestID
	}
	if u.StartDate != nil {
		r.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		r.EndDate = *u.EndDate
	}
	if u.Price != nil {
		r.Price = *u.Price
	}
	if u.PaymentMethod != nil {
		r.PaymentMethod = *u.PaymentMethod
	}
	if u.Notes != nil {
		r.Notes = *u.Notes
	}
	r.UpdatedAt = time.Now()
}

// NewProtectedFieldsError builds the update-rejection error, naming the
// offending fields so the operator knows exactly what conflicted.
func NewProtectedFieldsError(fields []string) *shared.DomainError {
	return shared.NewDomainError("PROTECTED_FIELDS",
		"Reservation is invoiced; protected fields cannot change: "+strings.Join(fields, ", "))
}

// ErrDeleteBlocked rejects deletion of an invoiced reservation
var ErrDeleteBlocked = shared.NewDomainError("DELETE_BLOCKED", "Invoiced reservations cannot be deleted")

// NewReservation creates a new reservation
func NewReservation(propertyID, roomID, guestID int64, start, end time.Time, price decimal.Decimal, method PaymentMethod) (*Reservation, error) {
	if propertyID <= 0 || roomID <= 0 || guestID <= 0 {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "Property, room and guest are required")
	}
	if !end.After(start) {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "End date must be after start date")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "Price cannot be negative")
	}
	now := time.Now()
	return &Reservation{
		PropertyID:    propertyID,
		RoomID:        roomID,
		GuestID:       guestID,
		StartDate:     start,
		EndDate:       end,
		Price:         price,
		PaymentMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
