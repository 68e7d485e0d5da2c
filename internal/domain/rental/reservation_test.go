package rental

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testReservation(t *testing.T) *Reservation {
	t.Helper()
	r, err := NewReservation(1, 2, 3, date(2024, 3, 1), date(2024, 3, 8), decimal.NewFromInt(700), PaymentMethodCash)
	require.NoError(t, err)
	return r
}

func TestNewReservation_Validation(t *testing.T) {
	_, err := NewReservation(0, 2, 3, date(2024, 3, 1), date(2024, 3, 8), decimal.NewFromInt(700), PaymentMethodCash)
	assert.Error(t, err)

	_, err = NewReservation(1, 2, 3, date(2024, 3, 8), date(2024, 3, 1), decimal.NewFromInt(700), PaymentMethodCash)
	assert.Error(t, err)

	_, err = NewReservation(1, 2, 3, date(2024, 3, 1), date(2024, 3, 8), decimal.NewFromInt(-1), PaymentMethodCash)
	assert.Error(t, err)
}

func TestPaymentMethodInvoiceable(t *testing.T) {
	assert.True(t, PaymentMethodCash.Invoiceable())
	assert.True(t, PaymentMethodTransfer.Invoiceable())
	assert.False(t, PaymentMethodCard.Invoiceable())
	assert.False(t, PaymentMethodPlatform.Invoiceable())
}

func TestIsInvoiced(t *testing.T) {
	r := testReservation(t)
	assert.False(t, r.IsInvoiced())

	empty := ""
	r.InvoiceNumber = &empty
	assert.False(t, r.IsInvoiced())

	number := "FR01/001"
	r.InvoiceNumber = &number
	assert.True(t, r.IsInvoiced())
}

func TestChangedProtectedFields(t *testing.T) {
	r := testReservation(t)

	t.Run("no changes", func(t *testing.T) {
		assert.Empty(t, r.ChangedProtectedFields(ReservationUpdate{}))
	})

	t.Run("same values are not changes", func(t *testing.T) {
		price := decimal.NewFromInt(700)
		start := date(2024, 3, 1)
		u := ReservationUpdate{Price: &price, StartDate: &start}
		assert.Empty(t, r.ChangedProtectedFields(u))
	})

	t.Run("equivalent decimal is not a change", func(t *testing.T) {
		price := decimal.RequireFromString("700.00")
		assert.Empty(t, r.ChangedProtectedFields(ReservationUpdate{Price: &price}))
	})

	t.Run("each protected field is reported by name", func(t *testing.T) {
		price := decimal.NewFromInt(800)
		start := date(2024, 3, 2)
		end := date(2024, 3, 9)
		propertyID := int64(9)
		roomID := int64(9)
		guestID := int64(9)
		method := PaymentMethodTransfer
		u := ReservationUpdate{
			Price:         &price,
			StartDate:     &start,
			EndDate:       &end,
			PropertyID:    &propertyID,
			RoomID:        &roomID,
			GuestID:       &guestID,
			PaymentMethod: &method,
		}
		changed := r.ChangedProtectedFields(u)
		assert.ElementsMatch(t, ProtectedFields, changed)
	})

	t.Run("notes are never protected", func(t *testing.T) {
		notes := "late checkout"
		assert.Empty(t, r.ChangedProtectedFields(ReservationUpdate{Notes: &notes}))
	})
}

func TestApply(t *testing.T) {
	r := testReservation(t)
	notes := "sea view upgrade"
	price := decimal.NewFromInt(850)
	r.Apply(ReservationUpdate{Notes: &notes, Price: &price})
	assert.Equal(t, "sea view upgrade", r.Notes)
	assert.True(t, r.Price.Equal(decimal.NewFromInt(850)))
}

func TestNewProtectedFieldsError(t *testing.T) {
	err := NewProtectedFieldsError([]string{FieldPrice, FieldStartDate})
	assert.Equal(t, "PROTECTED_FIELDS", err.Code)
	assert.Contains(t, err.Message, "price")
	assert.Contains(t, err.Message, "start_date")
}
