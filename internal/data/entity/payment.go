package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment tracks one gateway transaction for one booking. Amount is fixed at
// initiation; only Status and UpdatedAt change afterwards.
type Payment struct {
	BaseNoDelete
	BookingID     uuid.UUID       `db:"booking_id"`
	Amount        decimal.Decimal `db:"amount"`
	Status        PaymentStatus   `db:"status"`
	TransactionID *string         `db:"transaction_id"`
}

// Reference returns the gateway transaction reference, or "" before one is assigned.
func (p *Payment) Reference() string {
	if p.TransactionID == nil {
		return ""
	}
	return *p.TransactionID
}
