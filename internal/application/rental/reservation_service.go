package rental

import (
	"context"
	"time"

	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuditLogger records back-office actions for the audit trail.
// Fire-and-forget; implementations never block the business operation.
type AuditLogger interface {
	Record(ctx context.Context, action, table string, recordID int64, oldValues, newValues any, description string)
}

type nopAuditLogger struct{}

func (nopAuditLogger) Record(ctx context.Context, action, table string, recordID int64, oldValues, newValues any, description string) {
}

// ReservationService provides reservation reads and the guarded mutation
// surface. Every update and delete passes the invoice-immutability guard:
// once a reservation carries an invoice number its protected business
// fields are frozen and the row cannot be deleted.
type ReservationService struct {
	scope           TransactionScope
	reservationRepo rental.ReservationRepository
	audit           AuditLogger
	logger          *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	scope TransactionScope,
	reservationRepo rental.ReservationRepository,
	audit AuditLogger,
	logger *zap.Logger,
) *ReservationService {
	if audit == nil {
		audit = nopAuditLogger{}
	}
	return &ReservationService{
		scope:           scope,
		reservationRepo: reservationRepo,
		audit:           audit,
		logger:          logger.Named("reservation"),
	}
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID            int64           `json:"id"`
	PropertyID    int64           `json:"property_id"`
	RoomID        int64           `json:"room_id"`
	GuestID       int64           `json:"guest_id"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	InvoiceNumber *string         `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time      `json:"invoice_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toReservationResponse(r *rental.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		RoomID:        r.RoomID,
		GuestID:       r.GuestID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Price:         r.Price,
		PaymentMethod: string(r.PaymentMethod),
		Notes:         r.Notes,
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   r.InvoiceDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// CreateReservationRequest carries a new reservation
type CreateReservationRequest struct {
	PropertyID    int64           `json:"property_id" binding:"required"`
	RoomID        int64           `json:"room_id" binding:"required"`
	GuestID       int64           `json:"guest_id" binding:"required"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       time.Time       `json:"end_date" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash transfer card platform"`
	Notes         string          `json:"notes"`
}

// UpdateReservationRequest carries a partial reservation update; absent
// fields are left unchanged.
type UpdateReservationRequest struct {
	PropertyID    *int64           `json:"property_id"`
	RoomID        *int64           `json:"room_id"`
	GuestID       *int64           `json:"guest_id"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
	Price         *decimal.Decimal `json:"price"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=cash transfer card platform"`
	Notes         *string          `json:"notes"`
}

func (r UpdateReservationRequest) toDomain() rental.ReservationUpdate {
	u := rental.ReservationUpdate{
		PropertyID: r.PropertyID,
		RoomID:     r.RoomID,
		GuestID:    r.GuestID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Price:      r.Price,
		Notes:      r.Notes,
	}
	if r.PaymentMethod != nil {
		m := rental.PaymentMethod(*r.PaymentMethod)
		u.PaymentMethod = &m
	}
	return u
}

// Get returns a reservation by id
func (s *ReservationService) Get(ctx context.Context, id int64) (*ReservationResponse, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Reservation not found")
	}
	return toReservationResponse(reservation), nil
}

// ListFilter narrows reservation listings
type ListFilter struct {
	OwnerID  *int64
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}

// List returns reservations matching the filter with the total count
func (s *ReservationService) List(ctx context.Context, filter ListFilter) ([]ReservationResponse, int64, error) {
	domainFilter := rental.ReservationFilter{
		OwnerID:  filter.OwnerID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	reservations, err := s.reservationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reservationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		responses[i] = *toReservationResponse(&r)
	}
	return responses, total, nil
}

// Create stores a new reservation
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (*ReservationResponse, error) {
	reservation, err := rental.NewReservation(
		req.PropertyID, req.RoomID, req.GuestID,
		req.StartDate, req.EndDate,
		req.Price, rental.PaymentMethod(req.PaymentMethod),
	)
	if err != nil {
		return nil, err
	}
	reservation.Notes = req.Notes

	if err := s.reservationRepo.Save(ctx, reservation); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "create", "reservations", reservation.ID, nil, req, "Reservation created")
	return toReservationResponse(reservation), nil
}

// Update applies a partial update. For invoiced reservations any change to
// a protected field is rejected with PROTECTED_FIELDS naming the offending
// fields; non-protected fields like notes stay editable.
func (s *ReservationService) Update(ctx context.Context, id int64, req UpdateReservationRequest) (*ReservationResponse, error) {
	var response *ReservationResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return shared.NewDomainError("NOT_FOUND", "Reservation not found")
		}

		update := req.toDomain()
		if reservation.IsInvoiced() {
			if changed := reservation.ChangedProtectedFields(update); len(changed) > 0 {
				return rental.NewProtectedFieldsError(changed)
			}
		}

		old := *reservation
		reservation.Apply(update)
		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}

		s.audit.Record(ctx, "update", "reservations", id, old, reservation, "Reservation updated")
		response = toReservationResponse(reservation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Delete removes a reservation. Invoiced reservations are never deletable;
// the invoice must be reversed first.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		reservation, err := repos.ReservationRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return shared.NewDomainError("NOT_FOUND", "Reservation not found")
		}
		if reservation.IsInvoiced() {
			return rental.ErrDeleteBlocked
		}
		if err := repos.ReservationRepo().Delete(ctx, id); err != nil {
			return err
		}
		s.audit.Record(ctx, "delete", "reservations", id, reservation, nil, "Reservation deleted")
		return nil
	})
}
