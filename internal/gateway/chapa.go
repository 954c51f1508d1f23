package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-booking/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	initializePath = "/v1/transaction/initialize"
	verifyPath     = "/v1/transaction/verify/"

	statusSuccess = "success"

	// cap on error bodies copied into logs
	maxErrorBody = 2048
)

type Payer struct {
	Email     string
	FirstName string
	LastName  string
}

type InitializeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Payer       Payer
	Reference   string
	ReturnURL   string
	Description string
}

type InitializeResult struct {
	CheckoutURL string
	// Reference is the tx_ref the gateway accepted. It may differ from the one sent.
	Reference string
}

type VerifyResult struct {
	// Status is the transaction status reported by the gateway ("success", "failed", "pending", ...).
	Status    string
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

// Client is what the payment service needs from a gateway.
type Client interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// ChapaClient talks to the Chapa REST API. It keeps no state between calls and
// never retries.
type ChapaClient struct {
	config     utils.ChapaConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewChapaClient(config utils.ChapaConfig, log *zap.Logger) *ChapaClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &ChapaClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log.With(zap.String("gateway", "chapa")),
	}
}

type customization struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type initializePayload struct {
	Amount        string        `json:"amount"`
	Currency      string        `json:"currency"`
	Email         string        `json:"email"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	TxRef         string        `json:"tx_ref"`
	ReturnURL     string        `json:"return_url,omitempty"`
	CallbackURL   string        `json:"callback_url,omitempty"`
	Customization customization `json:"customization"`
}

type initializeResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    *struct {
		CheckoutURL string `json:"checkout_url"`
		TxRef       string `json:"tx_ref"`
	} `json:"data"`
}

type verifyResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    *struct {
		Status   string          `json:"status"`
		TxRef    string          `json:"tx_ref"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	} `json:"data"`
}

func (c *ChapaClient) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if c.config.SecretKey == "" {
		return nil, ErrGatewayMisconfigured
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = c.config.Currency
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = c.config.ReturnURL
	}

	payload := initializePayload{
		Amount:      req.Amount.StringFixed(2),
		Currency:    currency,
		Email:       req.Payer.Email,
		FirstName:   req.Payer.FirstName,
		LastName:    req.Payer.LastName,
		TxRef:       req.Reference,
		ReturnURL:   returnURL,
		CallbackURL: c.config.CallbackURL,
		Customization: customization{
			Title:       c.config.Title,
			Description: req.Description,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode initialize payload: %w", err)
	}

	var resp initializeResponse
	if err := c.do(ctx, http.MethodPost, initializePath, body, &resp); err != nil {
		c.log.Warn("Initialize failed", zap.Error(err), zap.String("tx_ref", req.Reference))
		return nil, err
	}

	if resp.Status != statusSuccess || resp.Data == nil || resp.Data.CheckoutURL == "" {
		c.log.Warn("Initialize not accepted",
			zap.String("tx_ref", req.Reference),
			zap.String("status", resp.Status),
			zap.String("message", resp.Message),
		)
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, describe(resp.Status, resp.Message))
	}

	accepted := resp.Data.TxRef
	if accepted == "" {
		accepted = req.Reference
	}

	c.log.Info("Transaction initialized",
		zap.String("tx_ref", accepted),
		zap.String("amount", payload.Amount),
		zap.String("currency", currency),
	)

	return &InitializeResult{
		CheckoutURL: resp.Data.CheckoutURL,
		Reference:   accepted,
	}, nil
}

func (c *ChapaClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if c.config.SecretKey == "" {
		return nil, ErrGatewayMisconfigured
	}
	if reference == "" {
		return nil, fmt.Errorf("%w: empty transaction reference", ErrGatewayRejected)
	}

	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, verifyPath+url.PathEscape(reference), nil, &resp); err != nil {
		c.log.Warn("Verify failed", zap.Error(err), zap.String("tx_ref", reference))
		return nil, err
	}

	if resp.Status != statusSuccess || resp.Data == nil {
		c.log.Warn("Verify not accepted",
			zap.String("tx_ref", reference),
			zap.String("status", resp.Status),
			zap.String("message", resp.Message),
		)
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, describe(resp.Status, resp.Message))
	}

	result := &VerifyResult{
		Status:    resp.Data.Status,
		Reference: resp.Data.TxRef,
		Amount:    resp.Data.Amount,
		Currency:  resp.Data.Currency,
	}
	if result.Reference == "" {
		result.Reference = reference
	}

	c.log.Info("Transaction verified",
		zap.String("tx_ref", reference),
		zap.String("gateway_status", result.Status),
	)

	return result, nil
}

// do sends one request and decodes a 200 body into out. The request is detached
// from the caller's cancellation and bounded only by the client timeout.
func (c *ChapaClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: http %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var failure struct {
			Message json.RawMessage `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		return fmt.Errorf("%w: http %d %s", ErrGatewayRejected, resp.StatusCode, strings.TrimSpace(string(failure.Message)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrGatewayRejected, err)
	}

	return nil
}

func describe(status, message string) string {
	if message == "" {
		return fmt.Sprintf("status %q", status)
	}
	return fmt.Sprintf("status %q: %s", status, message)
}
