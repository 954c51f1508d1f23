package wire

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T) (*App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool() // pgxmock v4 always monitors pings
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	log := zaptest.NewLogger(t)
	config, err := utils.LoadConfig("")
	require.NoError(t, err)

	gw := gateway.NewChapaClient(config.Chapa, log)
	dispatcher := notification.NewWorkerPool(notification.NewLogMailer(log), 1, 1, 0, log)

	return Wiring(mock, gw, dispatcher, config, log), mock
}

func TestRouter_Health(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	app, _ := newTestApp(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/payment/initiate"},
		{http.MethodGet, "/api/payment/booking_7_3"},
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"booking_id":"`+uuid.NewString()+`"}`))
		app.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestRouter_VerifyIsPublic(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`FROM payments\s+WHERE transaction_id`).
		WithArgs("unknown_ref").
		WillReturnRows(pgxmock.NewRows([]string{"id", "booking_id", "amount", "status", "transaction_id", "created_at", "updated_at"}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{"transaction_id":"unknown_ref"}`))
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_CheckoutReturnIsPublic(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`FROM payments\s+WHERE transaction_id`).
		WithArgs("unknown_ref").
		WillReturnRows(pgxmock.NewRows([]string{"id", "booking_id", "amount", "status", "transaction_id", "created_at", "updated_at"}))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment/verify?trx_ref=unknown_ref", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
