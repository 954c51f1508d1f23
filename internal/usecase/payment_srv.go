package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const gatewayStatusSuccess = "success"

type PaymentService interface {
	// Initiate opens a gateway checkout for the guest's booking and records a
	// pending payment. Nothing is stored when the gateway call fails.
	Initiate(ctx context.Context, guestID uuid.UUID, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error)

	// Verify asks the gateway for the transaction's outcome and stores it. On a
	// gateway failure the payment is marked failed and both the recorded result
	// and the error are returned.
	Verify(ctx context.Context, transactionID string) (*response.VerifyPaymentResponse, error)

	GetByTransactionID(ctx context.Context, guestID uuid.UUID, transactionID string) (*response.PaymentResponse, error)
}

type paymentService struct {
	repo       *repository.Repository
	gateway    gateway.Client
	dispatcher notification.Dispatcher
	config     utils.ChapaConfig
	verifies   singleflight.Group
	log        *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	gw gateway.Client,
	dispatcher notification.Dispatcher,
	config utils.ChapaConfig,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:       repo,
		gateway:    gw,
		dispatcher: dispatcher,
		config:     config,
		log:        log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) Initiate(ctx context.Context, guestID uuid.UUID, req *request.InitiatePaymentRequest) (*response.InitiatePaymentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking_id %q", ErrInvalidRequest, req.BookingID)
	}

	booking, err := s.repo.Booking.FindByIDAndGuest(ctx, bookingID, guestID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	existing, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}
	if existing != nil {
		s.log.Warn("Payment already initiated",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_id", existing.ID.String()),
			zap.String("status", string(existing.Status)),
		)
		return nil, ErrPaymentAlreadyExists
	}

	// the amount always comes from the listing, never from the client
	listing, err := s.repo.Listing.FindByID(ctx, booking.ListingID)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %s for booking %s not found", booking.ListingID.String(), booking.ID.String())
	}

	guest, err := s.repo.User.FindByID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("load guest: %w", err)
	}
	if guest == nil {
		return nil, fmt.Errorf("guest %s not found", guestID.String())
	}

	// Once the gateway is called the outcome is recorded even if the client
	// has gone away.
	ctx = context.WithoutCancel(ctx)

	result, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		Amount:   listing.Price,
		Currency: s.config.Currency,
		Payer: gateway.Payer{
			Email:     guest.Email,
			FirstName: payerFirstName(guest),
			LastName:  guest.LastName,
		},
		Reference:   bookingReference(booking.ID, guestID),
		ReturnURL:   s.config.ReturnURL,
		Description: fmt.Sprintf("Payment for booking %s", booking.ID.String()),
	})
	if err != nil {
		s.log.Error("Gateway initialize failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	now := time.Now()
	payment := &entity.Payment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     booking.ID,
		Amount:        listing.Price,
		Status:        entity.PaymentStatusPending,
		TransactionID: &result.Reference,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrPaymentExists) || errors.Is(err, repository.ErrTransactionExists) {
			s.log.Warn("Concurrent initiate lost the race",
				zap.String("booking_id", booking.ID.String()),
				zap.String("transaction_id", result.Reference),
			)
			return nil, ErrPaymentAlreadyExists
		}
		return nil, fmt.Errorf("save payment: %w", err)
	}

	s.log.Info("Payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("transaction_id", result.Reference),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)

	return &response.InitiatePaymentResponse{
		CheckoutURL:   result.CheckoutURL,
		TransactionID: result.Reference,
		Status:        payment.Status,
	}, nil
}

// Verify coalesces concurrent calls for the same transaction into one gateway
// round trip.
func (s *paymentService) Verify(ctx context.Context, transactionID string) (*response.VerifyPaymentResponse, error) {
	v, err, shared := s.verifies.Do(transactionID, func() (any, error) {
		return s.verify(context.WithoutCancel(ctx), transactionID)
	})
	if shared {
		s.log.Debug("Verify result shared", zap.String("transaction_id", transactionID))
	}

	result, _ := v.(*response.VerifyPaymentResponse)
	return result, err
}

func (s *paymentService) verify(ctx context.Context, transactionID string) (*response.VerifyPaymentResponse, error) {
	payment, err := s.repo.Payment.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	result, err := s.gateway.Verify(ctx, transactionID)
	if errors.Is(err, gateway.ErrGatewayMisconfigured) {
		return nil, err
	}
	if err != nil {
		s.log.Warn("Gateway verify failed, marking payment failed",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
			zap.String("transaction_id", transactionID),
		)
		if updErr := s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusFailed); updErr != nil {
			return nil, fmt.Errorf("record failed verification: %w", updErr)
		}
		return &response.VerifyPaymentResponse{
			TransactionID: transactionID,
			Status:        entity.PaymentStatusFailed,
			Detail:        "Verification failed: " + err.Error(),
		}, fmt.Errorf("verify payment: %w", err)
	}

	if !result.Amount.IsZero() && !result.Amount.Equal(payment.Amount) {
		s.log.Warn("Gateway amount differs from recorded amount",
			zap.String("transaction_id", transactionID),
			zap.String("recorded", payment.Amount.StringFixed(2)),
			zap.String("gateway", result.Amount.StringFixed(2)),
		)
	}

	status := MapGatewayStatus(result.Status)
	if err := s.repo.Payment.UpdateStatus(ctx, payment.ID, status); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	s.log.Info("Payment verified",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", transactionID),
		zap.String("gateway_status", result.Status),
		zap.String("previous", string(payment.Status)),
		zap.String("status", string(status)),
	)

	if status == entity.PaymentStatusCompleted && payment.Status != entity.PaymentStatusCompleted {
		s.notifyCompleted(ctx, payment)
	}

	detail := "Payment verified successfully"
	if status != entity.PaymentStatusCompleted {
		detail = fmt.Sprintf("Gateway reported status %q", result.Status)
	}

	return &response.VerifyPaymentResponse{
		TransactionID: transactionID,
		Status:        status,
		Detail:        detail,
	}, nil
}

func (s *paymentService) GetByTransactionID(ctx context.Context, guestID uuid.UUID, transactionID string) (*response.PaymentResponse, error) {
	payment, err := s.repo.Payment.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	booking, err := s.repo.Booking.FindByIDAndGuest(ctx, payment.BookingID, guestID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrPaymentNotFound
	}

	return response.PaymentToResponse(payment), nil
}

// notifyCompleted is best effort: every failure is logged and dropped.
func (s *paymentService) notifyCompleted(ctx context.Context, payment *entity.Payment) {
	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil || booking == nil {
		s.log.Error("Cannot notify, booking lookup failed",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return
	}

	guest, err := s.repo.User.FindByID(ctx, booking.GuestID)
	if err != nil || guest == nil {
		s.log.Error("Cannot notify, guest lookup failed",
			zap.Error(err),
			zap.String("guest_id", booking.GuestID.String()),
		)
		return
	}

	task := notification.Task{RecipientEmail: guest.Email, BookingID: booking.ID}
	if err := s.dispatcher.Enqueue(task); err != nil {
		s.log.Error("Failed to enqueue payment confirmation",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	s.log.Info("Payment confirmation queued", zap.String("booking_id", booking.ID.String()))
}

// MapGatewayStatus maps a gateway transaction status to the local one: only
// "success" completes a payment, anything else fails it.
func MapGatewayStatus(gatewayStatus string) entity.PaymentStatus {
	if gatewayStatus == gatewayStatusSuccess {
		return entity.PaymentStatusCompleted
	}
	return entity.PaymentStatusFailed
}

func bookingReference(bookingID, guestID uuid.UUID) string {
	return fmt.Sprintf("booking_%s_%s", bookingID.String(), guestID.String())
}

func payerFirstName(u *entity.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
