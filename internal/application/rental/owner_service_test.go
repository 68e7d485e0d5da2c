package rental

import (
	"context"
	"testing"

	"github.com/rentora/backend/internal/domain/rental"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOwnerRepository is a mock implementation of rental.OwnerRepository
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

func TestOwnerService_Get_Success(t *testing.T) {
	repo := new(MockOwnerRepository)
	service := NewOwnerService(repo)
	ctx := context.Background()

	repo.On("FindByID", ctx, int64(7)).
		Return(&rental.Owner{ID: 7, Name: "Dupont", LastInvoiceNumber: 14}, nil)

	result, err := service.Get(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, "FR07", result.InvoiceSeries)
	assert.Equal(t, 14, result.LastInvoiceNumber)
}

func TestOwnerService_Get_NotFound(t *testing.T) {
	repo := new(MockOwnerRepository)
	service := NewOwnerService(repo)
	ctx := context.Background()

	repo.On("FindByID", ctx, int64(99)).Return(nil, nil)

	result, err := service.Get(ctx, 99)

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestOwnerService_List(t *testing.T) {
	repo := new(MockOwnerRepository)
	service := NewOwnerService(repo)
	ctx := context.Background()

	repo.On("FindAll", ctx).Return([]rental.Owner{
		{ID: 1, Name: "Martin", LastInvoiceNumber: 3},
		{ID: 12, Name: "Bernard"},
	}, nil)

	results, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "FR01", results[0].InvoiceSeries)
	assert.Equal(t, "FR12", results[1].InvoiceSeries)
}
