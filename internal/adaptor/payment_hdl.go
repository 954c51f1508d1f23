package adaptor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	service       usecase.PaymentService
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, webhookSecret string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("handler", "payment")),
	}
}

// Initiate handles POST /api/payment/initiate (protected)
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	guestID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if !h.validate(w, req, "initiate payment") {
		return
	}

	res, err := h.service.Initiate(r.Context(), guestID, &req)
	if err != nil {
		h.handleServiceError(w, err, "initiate payment", nil)
		return
	}

	utils.ResponseSuccess(w, "Payment initiated", res)
}

// Verify handles POST /api/payment/verify
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if !h.validate(w, req, "verify payment") {
		return
	}

	h.verify(w, r, req.TransactionID, "verify payment")
}

// VerifyReturn handles GET /api/payment/verify, the page the gateway redirects
// the guest to after checkout. The reference arrives as tx_ref or trx_ref.
func (h *PaymentHandler) VerifyReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.VerifyPaymentRequest{TransactionID: query.Get("tx_ref")}
	if req.TransactionID == "" {
		req.TransactionID = query.Get("trx_ref")
	}

	if !h.validate(w, req, "verify payment return") {
		return
	}

	h.verify(w, r, req.TransactionID, "verify payment return")
}

// Webhook handles POST /api/payment/webhook, called by the gateway. The payload
// status is not trusted: the transaction is verified again with the gateway.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if h.webhookSecret != "" && !h.validSignature(r, body) {
		h.log.Warn("Webhook signature mismatch", zap.String("ip", r.RemoteAddr))
		utils.ResponseUnauthorized(w, "Invalid signature")
		return
	}

	var req request.ChapaWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if !h.validate(w, req, "payment webhook") {
		return
	}

	h.log.Info("Webhook received",
		zap.String("event", req.Event),
		zap.String("tx_ref", req.TxRef),
		zap.String("status", req.Status),
	)

	h.verify(w, r, req.TxRef, "payment webhook")
}

// GetByTransactionID handles GET /api/payment/{transaction_id} (protected)
func (h *PaymentHandler) GetByTransactionID(w http.ResponseWriter, r *http.Request) {
	guestID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	transactionID := chi.URLParam(r, "transaction_id")
	if transactionID == "" {
		utils.ResponseBadRequest(w, "Transaction ID is required", nil)
		return
	}

	payment, err := h.service.GetByTransactionID(r.Context(), guestID, transactionID)
	if err != nil {
		h.handleServiceError(w, err, "get payment", nil)
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

func (h *PaymentHandler) verify(w http.ResponseWriter, r *http.Request, transactionID, operation string) {
	res, err := h.service.Verify(r.Context(), transactionID)
	if err != nil {
		h.handleServiceError(w, err, operation, res)
		return
	}

	message := "Payment verified"
	if res.Status != entity.PaymentStatusCompleted {
		message = "Payment not completed"
	}
	utils.ResponseSuccess(w, message, res)
}

// validSignature accepts either gateway header: x-chapa-signature signs the raw
// body, chapa-signature signs the secret itself.
func (h *PaymentHandler) validSignature(r *http.Request, body []byte) bool {
	secret := []byte(h.webhookSecret)
	return signatureMatches(r.Header.Get("x-chapa-signature"), secret, body) ||
		signatureMatches(r.Header.Get("chapa-signature"), secret, secret)
}

func signatureMatches(header string, secret, payload []byte) bool {
	got, err := hex.DecodeString(strings.TrimSpace(header))
	if err != nil || len(got) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// validate writes a 400 with the field errors when req is invalid.
func (h *PaymentHandler) validate(w http.ResponseWriter, req any, operation string) bool {
	validationErrors := utils.ValidateStruct(req)
	if len(validationErrors) == 0 {
		return true
	}

	h.log.Warn("Validation failed for "+operation,
		zap.String("errors", utils.FormatValidationErrors(validationErrors)))
	utils.ResponseBadRequest(w, "Validation failed", validationErrors)
	return false
}

// handleServiceError maps service errors to responses. verifyResult, when set,
// is returned with gateway failures so the caller sees the recorded status.
func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string, verifyResult *response.VerifyPaymentResponse) {
	switch {
	case errors.Is(err, usecase.ErrBookingNotFound):
		h.log.Warn(operation+" failed - booking not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrPaymentNotFound):
		h.log.Warn(operation+" failed - payment not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrPaymentAlreadyExists):
		h.log.Warn(operation+" failed - already initiated", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidRequest), errors.Is(err, usecase.ErrInvalidAmount):
		h.log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrGatewayMisconfigured):
		h.log.Error(operation+" failed - gateway not configured", zap.Error(err))
		utils.ResponseInternalError(w, "Payment gateway is not configured")

	case errors.Is(err, usecase.ErrGatewayRejected), errors.Is(err, usecase.ErrGatewayUnavailable):
		h.log.Error(operation+" failed - gateway error", zap.Error(err))
		var data any
		if verifyResult != nil {
			data = verifyResult
		}
		utils.ResponseBadGateway(w, "Payment gateway error", data)

	default:
		h.log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
