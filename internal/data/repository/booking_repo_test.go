package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBookingRepository_FindByIDAndGuest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepository(mock, zaptest.NewLogger(t))
	bookingID, listingID, guestID := uuid.New(), uuid.New(), uuid.New()
	checkIn := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`FROM bookings\s+WHERE id = \$1 AND guest_id = \$2`).
		WithArgs(bookingID, guestID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "listing_id", "guest_id", "check_in_date", "check_out_date", "created_at", "updated_at"}).
			AddRow(bookingID, listingID, guestID, checkIn, checkIn.AddDate(0, 0, 3), now, now))

	booking, err := repo.FindByIDAndGuest(context.Background(), bookingID, guestID)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, listingID, booking.ListingID)
	assert.True(t, booking.CheckOutDate.After(booking.CheckInDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByIDAndGuestOtherGuest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepository(mock, zaptest.NewLogger(t))
	bookingID, strangerID := uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM bookings`).
		WithArgs(bookingID, strangerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "listing_id", "guest_id", "check_in_date", "check_out_date", "created_at", "updated_at"}))

	booking, err := repo.FindByIDAndGuest(context.Background(), bookingID, strangerID)
	require.NoError(t, err)
	assert.Nil(t, booking)
}

func TestBookingRepository_FindByIDError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookingRepository(mock, zaptest.NewLogger(t))
	boom := errors.New("db down")

	bookingID := uuid.New()
	mock.ExpectQuery(`FROM bookings`).WithArgs(bookingID).WillReturnError(boom)

	_, err = repo.FindByID(context.Background(), bookingID)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock, zaptest.NewLogger(t))
	listingID, ownerID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM listings\s+WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(listingID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "title", "description", "price", "created_at", "updated_at", "deleted_at"}).
			AddRow(listingID, ownerID, "Lakeside cabin", "", decimal.RequireFromString("120.00"), now, now, (*time.Time)(nil)))

	listing, err := repo.FindByID(context.Background(), listingID)
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, "120.00", listing.Price.StringFixed(2))
	assert.Nil(t, listing.DeletedAt)
}

func TestSessionRepository_FindValidSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSessionRepository(mock, zaptest.NewLogger(t))
	token, userID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM sessions\s+WHERE token = \$1`).
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "expires_at", "revoked_at", "created_at"}).
			AddRow(uuid.New(), userID, token, now.Add(time.Hour), (*time.Time)(nil), now))

	session, err := repo.FindValidSession(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, userID, session.UserID)
}
