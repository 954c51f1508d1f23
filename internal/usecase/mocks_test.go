package usecase

import (
	"context"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

type mockListingRepo struct{ mock.Mock }

func (m *mockListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	listing, _ := args.Get(0).(*entity.Listing)
	return listing, args.Error(1)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	args := m.Called(ctx, id)
	booking, _ := args.Get(0).(*entity.Booking)
	return booking, args.Error(1)
}

func (m *mockBookingRepo) FindByIDAndGuest(ctx context.Context, id, guestID uuid.UUID) (*entity.Booking, error) {
	args := m.Called(ctx, id, guestID)
	booking, _ := args.Get(0).(*entity.Booking)
	return booking, args.Error(1)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	args := m.Called(ctx, bookingID)
	payment, _ := args.Get(0).(*entity.Payment)
	return payment, args.Error(1)
}

func (m *mockPaymentRepo) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	args := m.Called(ctx, transactionID)
	payment, _ := args.Get(0).(*entity.Payment)
	return payment, args.Error(1)
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status entity.PaymentStatus) error {
	return m.Called(ctx, paymentID, status).Error(0)
}

func (m *mockPaymentRepo) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Payment, error) {
	args := m.Called(ctx, olderThan, limit)
	payments, _ := args.Get(0).([]*entity.Payment)
	return payments, args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*gateway.InitializeResult)
	return res, args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	args := m.Called(ctx, reference)
	res, _ := args.Get(0).(*gateway.VerifyResult)
	return res, args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Enqueue(task notification.Task) error {
	return m.Called(task).Error(0)
}
