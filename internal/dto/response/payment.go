package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type InitiatePaymentResponse struct {
	CheckoutURL   string               `json:"checkout_url"`
	TransactionID string               `json:"transaction_id"`
	Status        entity.PaymentStatus `json:"status"`
}

type VerifyPaymentResponse struct {
	TransactionID string               `json:"transaction_id"`
	Status        entity.PaymentStatus `json:"status"`
	Detail        string               `json:"detail"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Amount        string               `json:"amount"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func PaymentToResponse(p *entity.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID.String(),
		BookingID:     p.BookingID.String(),
		Amount:        p.Amount.StringFixed(2),
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
