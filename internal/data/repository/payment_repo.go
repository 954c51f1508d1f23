package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	// ErrPaymentExists is returned by Create when the booking already has a payment.
	ErrPaymentExists = errors.New("payment already exists for booking")
	// ErrTransactionExists is returned by Create when the transaction reference is taken.
	ErrTransactionExists = errors.New("transaction reference already in use")
)

const (
	paymentBookingConstraint     = "payments_booking_id_key"
	paymentTransactionConstraint = "payments_transaction_id_key"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, status entity.PaymentStatus) error

	// FindStalePending lists pending payments with a transaction reference that
	// have not been touched for at least olderThan, oldest first.
	FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

// Create relies on the unique indexes on booking_id and transaction_id, so two
// concurrent inserts for the same booking cannot both succeed.
func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, amount, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Status,
		payment.TransactionID,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if constraint, ok := database.UniqueViolation(err); ok {
		r.log.Warn("Payment insert hit unique constraint",
			zap.String("constraint", constraint),
			zap.String("booking_id", payment.BookingID.String()),
		)
		if constraint == paymentTransactionConstraint {
			return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), ErrTransactionExists)
		}
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), ErrPaymentExists)
	}
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return nil
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, status, transaction_id, created_at, updated_at
		FROM payments
		WHERE booking_id = $1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		r.log.Error("Failed to find payment by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find payment by booking ID %s: %w", bookingID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, status, transaction_id, created_at, updated_at
		FROM payments
		WHERE transaction_id = $1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		r.log.Error("Failed to find payment by transaction ID",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("find payment by transaction ID %s: %w", transactionID, err)
	}

	return payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status entity.PaymentStatus) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, paymentID, status)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("payment_id", paymentID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update payment %s status to %s: %w", paymentID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found", paymentID.String())
	}

	return nil
}

func (r *paymentRepository) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Payment, error) {
	query := `
		SELECT id, booking_id, amount, status, transaction_id, created_at, updated_at
		FROM payments
		WHERE status = $1
		  AND transaction_id IS NOT NULL
		  AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3
	`

	cutoff := time.Now().Add(-olderThan)
	rows, err := r.db.Query(ctx, query, entity.PaymentStatusPending, cutoff, limit)
	if err != nil {
		r.log.Error("Failed to find stale pending payments",
			zap.Error(err),
			zap.Duration("older_than", olderThan),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find stale pending payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Status,
		&payment.TransactionID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
