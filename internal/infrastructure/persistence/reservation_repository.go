package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id int64) (*rental.Reservation, error) {
	var reservation rental.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// FindByIDForUpdate locks the reservation row for the duration of the
// enclosing transaction.
func (r *GormReservationRepository) FindByIDForUpdate(ctx context.Context, id int64) (*rental.Reservation, error) {
	var reservation rental.Reservation
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// filtered applies the common reservation filter conditions
func (r *GormReservationRepository) filtered(ctx context.Context, filter rental.ReservationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&rental.Reservation{})
	if filter.OwnerID != nil {
		query = query.
			Joins("JOIN properties ON properties.id = reservations.property_id").
			Where("properties.owner_id = ?", *filter.OwnerID)
	}
	if filter.FromDate != nil {
		query = query.Where("reservations.start_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("reservations.start_date <= ?", *filter.ToDate)
	}
	return query
}

// FindAll returns reservations matching the filter, newest stay first
func (r *GormReservationRepository) FindAll(ctx context.Context, filter rental.ReservationFilter) ([]rental.Reservation, error) {
	query := r.filtered(ctx, filter).Order("reservations.start_date DESC, reservations.id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var reservations []rental.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Count returns the number of reservations matching the filter
func (r *GormReservationRepository) Count(ctx context.Context, filter rental.ReservationFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// uninvoiced narrows the filter down to invoice-eligible reservations
func (r *GormReservationRepository) uninvoiced(ctx context.Context, filter rental.ReservationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&rental.Reservation{}).
		Joins("JOIN properties ON properties.id = reservations.property_id").
		Where("reservations.payment_method IN ?", []string{string(rental.PaymentMethodCash), string(rental.PaymentMethodTransfer)}).
		Where("reservations.invoice_number IS NULL")
	if filter.OwnerID != nil {
		query = query.Where("properties.owner_id = ?", *filter.OwnerID)
	}
	if filter.FromDate != nil {
		query = query.Where("reservations.start_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("reservations.start_date <= ?", *filter.ToDate)
	}
	return query
}

// FindUninvoiced returns invoice-eligible reservations with their owner,
// ordered by owner then stay start date so batch numbering is deterministic.
func (r *GormReservationRepository) FindUninvoiced(ctx context.Context, filter rental.ReservationFilter) ([]rental.OwnedReservation, error) {
	var rows []rental.OwnedReservation
	err := r.uninvoiced(ctx, filter).
		Select("reservations.*, properties.owner_id AS owner_id").
		Order("properties.owner_id ASC, reservations.start_date ASC, reservations.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountUninvoiced returns the number of invoice-eligible reservations
func (r *GormReservationRepository) CountUninvoiced(ctx context.Context, filter rental.ReservationFilter) (int64, error) {
	var count int64
	if err := r.uninvoiced(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MaxInvoiceSeq scans the invoice numbers already assigned to the owner's
// reservations and returns the highest sequence in the series, 0 when none.
// Numbers that do not parse are skipped rather than failing the scan.
func (r *GormReservationRepository) MaxInvoiceSeq(ctx context.Context, ownerID int64, seriesPrefix string) (int, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&rental.Reservation{}).
		Joins("JOIN properties ON properties.id = reservations.property_id").
		Where("properties.owner_id = ?", ownerID).
		Where("reservations.invoice_number LIKE ?", seriesPrefix+"%").
		Pluck("reservations.invoice_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, number := range numbers {
		seq, err := billing.ParseSeq(number)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

// Save creates or updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, reservation *rental.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// SetInvoice writes the invoice number and date onto a reservation
func (r *GormReservationRepository) SetInvoice(ctx context.Context, id int64, number string, date time.Time) error {
	return r.updateInvoiceColumns(ctx, id, map[string]interface{}{
		"invoice_number": number,
		"invoice_date":   date,
	})
}

// SetInvoiceNumberOnly writes the invoice number and leaves the date empty.
// This is the fallback when the combined write fails: the number is already
// consumed and must not be lost.
func (r *GormReservationRepository) SetInvoiceNumberOnly(ctx context.Context, id int64, number string) error {
	return r.updateInvoiceColumns(ctx, id, map[string]interface{}{
		"invoice_number": number,
		"invoice_date":   nil,
	})
}

// ClearInvoice removes the invoice number and date from a reservation
func (r *GormReservationRepository) ClearInvoice(ctx context.Context, id int64) error {
	return r.updateInvoiceColumns(ctx, id, map[string]interface{}{
		"invoice_number": nil,
		"invoice_date":   nil,
	})
}

func (r *GormReservationRepository) updateInvoiceColumns(ctx context.Context, id int64, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&rental.Reservation{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a reservation
func (r *GormReservationRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&rental.Reservation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReservationRepository implements ReservationRepository
var _ rental.ReservationRepository = (*GormReservationRepository)(nil)
