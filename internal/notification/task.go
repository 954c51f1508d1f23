package notification

import (
	"fmt"

	"github.com/google/uuid"
)

const confirmationSubject = "Payment Confirmation"

// Task is one confirmation message waiting to be sent.
type Task struct {
	RecipientEmail string    `json:"recipient_email"`
	BookingID      uuid.UUID `json:"booking_id"`
}

// Message renders the subject and body sent for the task.
func (t Task) Message() (subject, body string) {
	return confirmationSubject, fmt.Sprintf(
		"Your payment for booking %s was successful. Thank you for using our service!",
		t.BookingID.String(),
	)
}
