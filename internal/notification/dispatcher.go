package notification

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned by Enqueue when the task cannot be accepted without blocking.
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notification dispatcher is closed")
)

// Dispatcher accepts tasks for asynchronous delivery. Enqueue never blocks on
// delivery, and a nil error only means the task was queued.
type Dispatcher interface {
	Enqueue(task Task) error
}

// deliver sends a single task through mailer.
func deliver(ctx context.Context, mailer Mailer, task Task) error {
	if task.RecipientEmail == "" {
		return fmt.Errorf("booking %s: empty recipient", task.BookingID.String())
	}
	subject, body := task.Message()
	if err := mailer.Send(ctx, task.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("send confirmation for booking %s: %w", task.BookingID.String(), err)
	}
	return nil
}
