package usecase

import (
	"errors"

	"travel-booking/internal/gateway"
)

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrPaymentAlreadyExists = errors.New("payment already initiated for this booking")
	ErrPaymentNotFound      = errors.New("payment not found")

	ErrGatewayMisconfigured = gateway.ErrGatewayMisconfigured
	ErrGatewayRejected      = gateway.ErrGatewayRejected
	ErrGatewayUnavailable   = gateway.ErrGatewayUnavailable
	ErrInvalidAmount        = gateway.ErrInvalidAmount
)
