package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save inserts a ledger entry. The unique index on number turns a duplicate
// into a constraint violation instead of a silent reuse.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// FindByReservation finds the ledger entry for a reservation
func (r *GormInvoiceRepository) FindByReservation(ctx context.Context, reservationID int64) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "reservation_id = ?", reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// filtered applies the ledger date window
func (r *GormInvoiceRepository) filtered(ctx context.Context, from, to *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&billing.Invoice{})
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	return query
}

// FindAll returns ledger entries in the date window, newest first
func (r *GormInvoiceRepository) FindAll(ctx context.Context, from, to *time.Time, page, pageSize int) ([]billing.Invoice, error) {
	query := r.filtered(ctx, from, to).Order("created_at DESC, id DESC")
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	var invoices []billing.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Count returns the number of ledger entries in the date window
func (r *GormInvoiceRepository) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	var count int64
	if err := r.filtered(ctx, from, to).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MaxSeq returns the highest sequence recorded for a series prefix, 0 when
// the series has no entries. Malformed numbers are skipped.
func (r *GormInvoiceRepository) MaxSeq(ctx context.Context, seriesPrefix string) (int, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("number LIKE ?", seriesPrefix+"%").
		Pluck("number", &numbers).Error
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

// DeleteByReservation removes the ledger entry for a reservation
func (r *GormInvoiceRepository) DeleteByReservation(ctx context.Context, reservationID int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&billing.Invoice{}, "reservation_id = ?", reservationID)
	return result.RowsAffected, result.Error
}

// DeleteByNumber removes the ledger entry carrying a specific number
func (r *GormInvoiceRepository) DeleteByNumber(ctx context.Context, number string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&billing.Invoice{}, "number = ?", number)
	return result.RowsAffected, result.Error
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
