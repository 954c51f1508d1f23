package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
}

func TestValidateStruct(t *testing.T) {
	errs := ValidateStruct(sampleRequest{})
	assert.Equal(t, map[string]string{"booking_id": "This field is required"}, errs)

	errs = ValidateStruct(sampleRequest{BookingID: "not-a-uuid"})
	assert.Equal(t, "Must be a valid UUID", errs["booking_id"])

	assert.Nil(t, ValidateStruct(sampleRequest{BookingID: "7c9e6679-7425-40de-944b-e07fc1f90ae7"}))
}

func TestFormatValidationErrors(t *testing.T) {
	msg := FormatValidationErrors(map[string]string{"booking_id": "This field is required"})
	assert.Equal(t, "booking_id: This field is required", msg)

	msg = FormatValidationErrors(map[string]string{"tx_ref": "This field is required", "event": "Invalid event field"})
	assert.Equal(t, "event: Invalid event field; tx_ref: This field is required", msg)
}
