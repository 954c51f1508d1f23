package request

type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type VerifyPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,max=100,printascii"`
}

// ChapaWebhookRequest is the subset of the gateway's webhook payload the
// service reads. Its status is informational only.
type ChapaWebhookRequest struct {
	Event  string `json:"event"`
	TxRef  string `json:"tx_ref" validate:"required,max=100,printascii"`
	Status string `json:"status"`
}
