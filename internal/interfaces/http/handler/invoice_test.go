package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appbilling "github.com/rentora/backend/internal/application/billing"
	"github.com/rentora/backend/internal/domain/billing"
	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockOwnerRepository implements rental.OwnerRepository for testing
type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) FindByID(ctx context.Context, id int64) (*rental.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Owner), args.Error(1)
}

func (m *MockOwnerRepository) FindByIDForUpdate(ctx context.Context, id int64) (*rental.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Owner), args.Error(1)
}

func (m *MockOwnerRepository) FindAll(ctx context.Context) ([]rental.Owner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rental.Owner), args.Error(1)
}

func (m *MockOwnerRepository) Save(ctx context.Context, owner *rental.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockOwnerRepository) UpdateLastInvoiceNumber(ctx context.Context, id int64, last int) error {
	args := m.Called(ctx, id, last)
	return args.Error(0)
}

// MockReservationRepository implements rental.ReservationRepository for testing
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id int64) (*rental.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByIDForUpdate(ctx context.Context, id int64) (*rental.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindAll(ctx context.Context, filter rental.ReservationFilter) ([]rental.Reservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Count(ctx context.Context, filter rental.ReservationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) FindUninvoiced(ctx context.Context, filter rental.ReservationFilter) ([]rental.OwnedReservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.OwnedReservation), args.Error(1)
}

func (m *MockReservationRepository) CountUninvoiced(ctx context.Context, filter rental.ReservationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) MaxInvoiceSeq(ctx context.Context, ownerID int64, seriesPrefix string) (int, error) {
	args := m.Called(ctx, ownerID, seriesPrefix)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepository) Save(ctx context.Context, reservation *rental.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) SetInvoice(ctx context.Context, id int64, number string, date time.Time) error {
	args := m.Called(ctx, id, number, date)
	return args.Error(0)
}

func (m *MockReservationRepository) SetInvoiceNumberOnly(ctx context.Context, id int64, number string) error {
	args := m.Called(ctx, id, number)
	return args.Error(0)
}

func (m *MockReservationRepository) ClearInvoice(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPropertyRepository implements rental.PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id int64) (*rental.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Property), args.Error(1)
}

func (m *MockPropertyRepository) OwnerIDOf(ctx context.Context, propertyID int64) (int64, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, property *rental.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

// MockInvoiceRepository implements billing.InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByReservation(ctx context.Context, reservationID int64) (*billing.Invoice, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, from, to *time.Time, page, pageSize int) ([]billing.Invoice, error) {
	args := m.Called(ctx, from, to, page, pageSize)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) MaxSeq(ctx context.Context, seriesPrefix string) (int, error) {
	args := m.Called(ctx, seriesPrefix)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) DeleteByReservation(ctx context.Context, reservationID int64) (int64, error) {
	args := m.Called(ctx, reservationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) DeleteByNumber(ctx context.Context, number string) (int64, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(int64), args.Error(1)
}

// Test setup helpers

type invoiceMocks struct {
	owners       *MockOwnerRepository
	reservations *MockReservationRepository
	properties   *MockPropertyRepository
	invoices     *MockInvoiceRepository
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupInvoiceHandler() (*InvoiceHandler, invoiceMocks) {
	m := invoiceMocks{
		owners:       new(MockOwnerRepository),
		reservations: new(MockReservationRepository),
		properties:   new(MockPropertyRepository),
		invoices:     new(MockInvoiceRepository),
	}
	scope := appbilling.NewNoOpTransactionScope(m.owners, m.reservations, m.properties, m.invoices)
	invoiceService := appbilling.NewInvoiceService(scope, m.reservations, m.invoices, nil, zap.NewNop())
	batchService := appbilling.NewBatchService(scope, m.reservations, nil, zap.NewNop())
	return NewInvoiceHandler(invoiceService, batchService, 0), m
}

func uninvoicedReservation(id, propertyID int64) *rental.Reservation {
	return &rental.Reservation{
		ID:            id,
		PropertyID:    propertyID,
		RoomID:        1,
		GuestID:       1,
		StartDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Price:         decimal.NewFromInt(450),
		PaymentMethod: rental.PaymentMethodCash,
	}
}

func withInvoice(r *rental.Reservation, number string) *rental.Reservation {
	r.InvoiceNumber = &number
	return r
}

// Tests

func TestInvoiceHandler_Generate_Success(t *testing.T) {
	handler, m := setupInvoiceHandler()

	m.reservations.On("FindByIDForUpdate", mock.Anything, int64(42)).
		Return(uninvoicedReservation(42, 3), nil)
	m.properties.On("OwnerIDOf", mock.Anything, int64(3)).Return(int64(7), nil)
	m.owners.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(&rental.Owner{ID: 7, Name: "Dupont", LastInvoiceNumber: 13}, nil)
	m.invoices.On("MaxSeq", mock.Anything, "FR07/").Return(13, nil)
	m.reservations.On("MaxInvoiceSeq", mock.Anything, int64(7), "FR07/").Return(13, nil)
	m.owners.On("UpdateLastInvoiceNumber", mock.Anything, int64(7), 14).Return(nil)
	m.invoices.On("Save", mock.Anything, mock.Anything).Return(nil)
	m.reservations.On("SetInvoice", mock.Anything, int64(42), "FR07/014", mock.AnythingOfType("time.Time")).Return(nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodPost, "/reservations/42/invoice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "FR07/014", data["invoice_number"])
	m.owners.AssertExpectations(t)
}

func TestInvoiceHandler_Generate_AlreadyInvoiced(t *testing.T) {
	handler, m := setupInvoiceHandler()

	m.reservations.On("FindByIDForUpdate", mock.Anything, int64(42)).
		Return(withInvoice(uninvoicedReservation(42, 3), "FR07/005"), nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodPost, "/reservations/42/invoice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ALREADY_INVOICED", resp.Error.Code)
}

func TestInvoiceHandler_Generate_InvalidID(t *testing.T) {
	handler, _ := setupInvoiceHandler()

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodPost, "/reservations/abc/invoice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_DeleteLast_NotLastInSeries(t *testing.T) {
	handler, m := setupInvoiceHandler()

	m.reservations.On("FindByIDForUpdate", mock.Anything, int64(42)).
		Return(withInvoice(uninvoicedReservation(42, 3), "FR07/013"), nil)
	m.properties.On("OwnerIDOf", mock.Anything, int64(3)).Return(int64(7), nil)
	m.owners.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(&rental.Owner{ID: 7, Name: "Dupont", LastInvoiceNumber: 14}, nil)
	m.reservations.On("MaxInvoiceSeq", mock.Anything, int64(7), "FR07/").Return(14, nil)
	m.invoices.On("MaxSeq", mock.Anything, "FR07/").Return(14, nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodDelete, "/reservations/42/invoice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_LAST_IN_SERIES", resp.Error.Code)
}

func TestInvoiceHandler_DeleteLast_Success(t *testing.T) {
	handler, m := setupInvoiceHandler()

	m.reservations.On("FindByIDForUpdate", mock.Anything, int64(42)).
		Return(withInvoice(uninvoicedReservation(42, 3), "FR07/014"), nil)
	m.properties.On("OwnerIDOf", mock.Anything, int64(3)).Return(int64(7), nil)
	m.owners.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(&rental.Owner{ID: 7, Name: "Dupont", LastInvoiceNumber: 14}, nil)
	m.reservations.On("MaxInvoiceSeq", mock.Anything, int64(7), "FR07/").Return(14, nil)
	m.invoices.On("MaxSeq", mock.Anything, "FR07/").Return(14, nil)
	m.invoices.On("DeleteByReservation", mock.Anything, int64(42)).Return(int64(1), nil)
	m.reservations.On("ClearInvoice", mock.Anything, int64(42)).Return(nil)
	m.owners.On("UpdateLastInvoiceNumber", mock.Anything, int64(7), 13).Return(nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodDelete, "/reservations/42/invoice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(13), data["last_invoice_number"])
}

func TestInvoiceHandler_Batch_Success(t *testing.T) {
	handler, m := setupInvoiceHandler()

	eligible := []rental.OwnedReservation{
		{Reservation: *uninvoicedReservation(10, 3), OwnerID: 7},
	}
	m.reservations.On("FindUninvoiced", mock.Anything, mock.Anything).Return(eligible, nil)
	m.owners.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(&rental.Owner{ID: 7, Name: "Dupont", LastInvoiceNumber: 0}, nil)
	m.invoices.On("MaxSeq", mock.Anything, "FR07/").Return(0, nil)
	m.reservations.On("MaxInvoiceSeq", mock.Anything, int64(7), "FR07/").Return(0, nil)
	m.invoices.On("Save", mock.Anything, mock.Anything).Return(nil)
	m.reservations.On("SetInvoice", mock.Anything, int64(10), "FR07/001", mock.AnythingOfType("time.Time")).Return(nil)
	m.owners.On("UpdateLastInvoiceNumber", mock.Anything, int64(7), 1).Return(nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	body, _ := json.Marshal(map[string]any{"owner_id": 7})
	req := httptest.NewRequest(http.MethodPost, "/invoices/batch", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["generated"])
}

func TestInvoiceHandler_Batch_InvalidDate(t *testing.T) {
	handler, _ := setupInvoiceHandler()

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	body, _ := json.Marshal(map[string]any{"from": "03/2026"})
	req := httptest.NewRequest(http.MethodPost, "/invoices/batch", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_PendingCount(t *testing.T) {
	handler, m := setupInvoiceHandler()

	m.reservations.On("CountUninvoiced", mock.Anything, mock.MatchedBy(func(f rental.ReservationFilter) bool {
		return f.OwnerID != nil && *f.OwnerID == 7
	})).Return(int64(3), nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/invoices/pending-count?owner_id=7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(3), data["pending"])
}

func TestInvoiceHandler_List(t *testing.T) {
	handler, m := setupInvoiceHandler()

	entries := []billing.Invoice{{ID: 1, Number: "FR07/001", ReservationID: 10}}
	m.invoices.On("FindAll", mock.Anything, (*time.Time)(nil), (*time.Time)(nil), 1, 20).Return(entries, nil)
	m.invoices.On("Count", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(int64(1), nil)

	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}
