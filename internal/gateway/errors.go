package gateway

import "errors"

var (
	// ErrGatewayMisconfigured means no API credential is available. Reported
	// before any request is sent.
	ErrGatewayMisconfigured = errors.New("payment gateway is not configured")
	// ErrGatewayUnavailable covers transport failures, timeouts and 5xx answers.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected means the gateway answered but did not accept the request.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)
