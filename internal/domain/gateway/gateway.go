package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
)

// Gateway is the capability both payment gateways implement. The redirect
// gateway builds a signed URL and verifies signed return parameters; the
// order gateway creates a remote order and captures it. Neither touches the
// ledger; they only return protocol data.
type Gateway interface {
	// CreateIntent starts a payment at the gateway and returns where to send
	// the user.
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error)

	// VerifyCallback authenticates an inbound callback and reports the
	// gateway's view of the payment. For the redirect gateway this is a
	// signature check; for the order gateway it is a capture call, which the
	// remote side treats idempotently.
	VerifyCallback(ctx context.Context, params map[string]string) (*CallbackResult, error)

	// Name returns the payment method this gateway serves
	Name() model.PaymentMethod
}

// CreateIntentRequest carries everything a gateway needs to start a payment
type CreateIntentRequest struct {
	TransactionID uuid.UUID
	AmountMinor   int64
	Currency      string
	OrderInfo     string
	ClientIP      string
	BankCode      string
	Locale        string
}

// CreateIntentResponse is the redirect target plus, for the order gateway,
// the externally issued order id that must be mapped before the URL is
// handed out.
type CreateIntentResponse struct {
	RedirectURL     string
	ExternalOrderID string
}

// CallbackResult is a gateway's authenticated verdict on a callback. Exactly
// one of TxnRef (redirect protocol, embedded local id) or ExternalOrderID
// (order protocol) is set; the caller resolves the transaction accordingly.
type CallbackResult struct {
	TxnRef          string
	ExternalOrderID string
	GatewayTxnID    string
	AmountMinor     int64
	ResponseCode    string
	Succeeded       bool
	// Raw is the verbatim callback payload, stored on the payment row for
	// audit.
	Raw map[string]interface{}
}
