package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestResponseJSON_StatusFollowsCode(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseSuccess(rec, "ok", map[string]string{"transaction_id": "booking_7_3"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["status"])
	assert.NotContains(t, body, "errors")

	rec = httptest.NewRecorder()
	ResponseBadRequest(rec, "Validation failed", map[string]string{"booking_id": "This field is required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body = decodeEnvelope(t, rec)
	assert.Equal(t, false, body["status"])
	assert.NotContains(t, body, "data")
	assert.Equal(t, map[string]any{"booking_id": "This field is required"}, body["errors"])
}

func TestResponseBadGateway_KeepsData(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseBadGateway(rec, "Payment gateway error", map[string]string{"status": "failed"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, map[string]any{"status": "failed"}, body["data"])
}
