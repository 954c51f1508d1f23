package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-booking/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChapaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewChapaClient(utils.ChapaConfig{
		BaseURL:   srv.URL,
		SecretKey: "CHASECK_TEST-secret",
		Currency:  "ETB",
		ReturnURL: "https://example.com/return",
		Title:     "Travel Booking",
		Timeout:   2 * time.Second,
	}, zaptest.NewLogger(t))
}

func initializeRequest() InitializeRequest {
	return InitializeRequest{
		Amount:      decimal.RequireFromString("120.00"),
		Payer:       Payer{Email: "a@x.com", FirstName: "Abebe", LastName: "Kebede"},
		Reference:   "booking_7_3",
		Description: "Payment for booking 7",
	}
}

func TestChapaClient_Initialize(t *testing.T) {
	var got initializePayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST-secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Hosted Link","status":"success","data":{"checkout_url":"https://pay/abc","tx_ref":"booking_7_3"}}`))
	})

	res, err := client.Initialize(context.Background(), initializeRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay/abc", res.CheckoutURL)
	assert.Equal(t, "booking_7_3", res.Reference)

	assert.Equal(t, "120.00", got.Amount)
	assert.Equal(t, "ETB", got.Currency)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "booking_7_3", got.TxRef)
	assert.Equal(t, "https://example.com/return", got.ReturnURL)
	assert.Equal(t, "Travel Booking", got.Customization.Title)
	assert.Equal(t, "Payment for booking 7", got.Customization.Description)
}

func TestChapaClient_InitializeUsesEchoedReference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://pay/abc","tx_ref":"chapa-rewritten-1"}}`))
	})

	res, err := client.Initialize(context.Background(), initializeRequest())
	require.NoError(t, err)
	assert.Equal(t, "chapa-rewritten-1", res.Reference)
}

func TestChapaClient_InitializeFallsBackToSubmittedReference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://pay/abc"}}`))
	})

	res, err := client.Initialize(context.Background(), initializeRequest())
	require.NoError(t, err)
	assert.Equal(t, "booking_7_3", res.Reference)
}

func TestChapaClient_InitializeErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"failed","message":"Invalid currency"}`))
			},
			want: ErrGatewayRejected,
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"status":"failed","message":{"email":["The email must be valid."]}}`))
			},
			want: ErrGatewayRejected,
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>maintenance</html>`))
			},
			want: ErrGatewayRejected,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			res, err := client.Initialize(context.Background(), initializeRequest())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChapaClient_InitializeTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.Initialize(context.Background(), initializeRequest())
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestChapaClient_IgnoresCallerCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://pay/abc","tx_ref":"booking_7_3"}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := client.Initialize(ctx, initializeRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay/abc", res.CheckoutURL)
}

func TestChapaClient_Misconfigured(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.config.SecretKey = ""

	_, err := client.Initialize(context.Background(), initializeRequest())
	assert.ErrorIs(t, err, ErrGatewayMisconfigured)

	_, err = client.Verify(context.Background(), "booking_7_3")
	assert.ErrorIs(t, err, ErrGatewayMisconfigured)
	assert.False(t, called)
}

func TestChapaClient_InitializeInvalidAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	})

	req := initializeRequest()
	req.Amount = decimal.Zero

	_, err := client.Initialize(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestChapaClient_Verify(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/transaction/verify/booking_7_3", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST-secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"message":"Payment details","status":"success","data":{"status":"success","tx_ref":"booking_7_3","amount":120,"currency":"ETB"}}`))
	})

	res, err := client.Verify(context.Background(), "booking_7_3")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "booking_7_3", res.Reference)
	assert.Equal(t, "ETB", res.Currency)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(120)))
}

func TestChapaClient_VerifyReportsTransactionStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"status":"pending"}}`))
	})

	res, err := client.Verify(context.Background(), "booking_7_3")
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "booking_7_3", res.Reference)
}

func TestChapaClient_VerifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "unknown reference",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Invalid transaction or Transaction not found","status":"failed","data":null}`))
			},
			want: ErrGatewayRejected,
		},
		{
			name: "missing data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"success","data":null}`))
			},
			want: ErrGatewayRejected,
		},
		{
			name: "unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			want: ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			_, err := client.Verify(context.Background(), "booking_7_3")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
