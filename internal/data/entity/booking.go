package entity

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a guest's reservation of a listing. The payment flow only reads it.
type Booking struct {
	BaseNoDelete
	ListingID    uuid.UUID `db:"listing_id"`
	GuestID      uuid.UUID `db:"guest_id"`
	CheckInDate  time.Time `db:"check_in_date"`
	CheckOutDate time.Time `db:"check_out_date"`
}
