package errors

import "errors"

// Sentinel errors for the checkout flow. Handlers map these onto HTTP
// responses; everything else is treated as internal.
var (
	// ErrInvalidRequest rejects a payment attempt before any transaction row
	// is created (empty cart, negative price, malformed amount).
	ErrInvalidRequest = errors.New("invalid payment request")

	// ErrSignatureInvalid means a callback failed cryptographic verification.
	// The transaction stays pending; the attempt is still recorded as failed.
	ErrSignatureInvalid = errors.New("callback signature verification failed")

	// ErrGatewayUnavailable is a timeout or 5xx from the external gateway,
	// retryable by the caller.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrTransactionNotFound means the callback could not be resolved to a
	// local transaction.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// GatewayError carries structured failure detail from a gateway API call.
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
