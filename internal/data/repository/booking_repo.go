package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDAndGuest returns nil when the booking is missing or belongs to another guest.
	FindByIDAndGuest(ctx context.Context, id, guestID uuid.UUID) (*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, listing_id, guest_id, check_in_date, check_out_date, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByIDAndGuest(ctx context.Context, id, guestID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, listing_id, guest_id, check_in_date, check_out_date, created_at, updated_at
		FROM bookings
		WHERE id = $1 AND guest_id = $2
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, guestID))
	if err != nil {
		r.log.Error("Failed to find booking by ID and guest",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("guest_id", guestID.String()),
		)
		return nil, fmt.Errorf("find booking %s for guest %s: %w", id.String(), guestID.String(), err)
	}

	return booking, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ListingID,
		&booking.GuestID,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
