package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
	domainErrors "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/errors"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/gateway"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/money"
)

const (
	orderStatusCompleted = "COMPLETED"
	defaultTimeout       = 15 * time.Second
)

// Client drives the order gateway: client-credentials token exchange, order
// create, order capture. Each operation obtains a fresh token; the remote
// side treats capture as idempotent, so repeated capture calls for an
// already-captured order return the prior result.
type Client struct {
	clientID  string
	secret    string
	baseURL   string
	returnURL string
	cancelURL string
	client    *http.Client
	logger    *zap.Logger
}

func NewClient(cfg config.PayPalConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		clientID:  cfg.ClientID,
		secret:    cfg.Secret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		returnURL: cfg.ReturnURL,
		cancelURL: cfg.CancelURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

func (c *Client) Name() model.PaymentMethod {
	return model.PaymentMethodPayPal
}

// GetAccessToken exchanges the client credentials for a short-lived bearer
// token. Tokens are not cached; every order operation fetches its own.
// TODO: cache the token for its advertised expires_in to save one round
// trip per operation.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("token request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %s", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp.StatusCode, body)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", &domainErrors.GatewayError{
			Code:    "EMPTY_TOKEN",
			Message: "token response contained no access_token",
		}
	}

	return token.AccessToken, nil
}

// CreateOrderResult is the external order id plus the approval link the user
// is redirected to.
type CreateOrderResult struct {
	ExternalOrderID string
	ApprovalURL     string
}

// CreateOrder creates a remote order. The amount is serialized as a
// fixed-decimal string at the currency's minor-unit precision; a binary
// float never enters the payload.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency string) (*CreateOrderResult, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	value := money.FormatMinor(amountMinor, money.Exponent(currency))
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": strings.ToUpper(currency),
					"value":         value,
				},
			},
		},
		"application_context": map[string]string{
			"return_url": c.returnURL,
			"cancel_url": c.cancelURL,
		},
	}

	body, err := c.post(ctx, "/v2/checkout/orders", token, payload)
	if err != nil {
		return nil, err
	}

	var order struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	if order.ID == "" {
		return nil, &domainErrors.GatewayError{
			Code:    "EMPTY_ORDER_ID",
			Message: "order response contained no id",
		}
	}

	result := &CreateOrderResult{ExternalOrderID: order.ID}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			result.ApprovalURL = link.Href
			break
		}
	}
	if result.ApprovalURL == "" {
		return nil, &domainErrors.GatewayError{
			Code:    "NO_APPROVAL_LINK",
			Message: "order response contained no approve link",
		}
	}

	c.logger.Info("order created",
		zap.String("external_order_id", order.ID),
		zap.String("amount", value),
		zap.String("currency", currency))

	return result, nil
}

// CaptureResult carries the capture status and the verbatim response body.
type CaptureResult struct {
	ExternalOrderID string
	Status          string
	CaptureID       string
	Raw             map[string]interface{}
}

// CaptureOrder captures an approved order. Safe to call more than once for
// the same order.
func (c *Client) CaptureOrder(ctx context.Context, externalOrderID string) (*CaptureResult, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", externalOrderID)
	body, err := c.post(ctx, path, token, map[string]interface{}{})
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse capture response: %w", err)
	}

	result := &CaptureResult{
		ExternalOrderID: externalOrderID,
		Status:          stringField(raw, "status"),
		Raw:             raw,
	}
	result.CaptureID = firstCaptureID(raw)

	c.logger.Info("order capture finished",
		zap.String("external_order_id", externalOrderID),
		zap.String("status", result.Status))

	return result, nil
}

// CreateIntent implements the gateway capability for checkout: create the
// order and hand back the approval URL with the external id the caller must
// persist before releasing the URL.
func (c *Client) CreateIntent(ctx context.Context, req *gateway.CreateIntentRequest) (*gateway.CreateIntentResponse, error) {
	order, err := c.CreateOrder(ctx, req.AmountMinor, req.Currency)
	if err != nil {
		return nil, err
	}
	return &gateway.CreateIntentResponse{
		RedirectURL:     order.ApprovalURL,
		ExternalOrderID: order.ExternalOrderID,
	}, nil
}

// VerifyCallback captures the order named by the confirmation redirect. A
// capture status other than COMPLETED is an authenticated failure, not an
// error.
func (c *Client) VerifyCallback(ctx context.Context, params map[string]string) (*gateway.CallbackResult, error) {
	externalOrderID := params["token"]
	if externalOrderID == "" {
		return nil, fmt.Errorf("%w: missing order token", domainErrors.ErrInvalidRequest)
	}

	capture, err := c.CaptureOrder(ctx, externalOrderID)
	if err != nil {
		return nil, err
	}

	return &gateway.CallbackResult{
		ExternalOrderID: capture.ExternalOrderID,
		GatewayTxnID:    capture.CaptureID,
		ResponseCode:    capture.Status,
		Succeeded:       capture.Status == orderStatusCompleted,
		Raw:             capture.Raw,
	}, nil
}

func (c *Client) post(ctx context.Context, path, token string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed",
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("gateway returned server error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", domainErrors.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.apiError(resp.StatusCode, body)
	}

	return body, nil
}

func (c *Client) apiError(statusCode int, body []byte) error {
	if statusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", domainErrors.ErrGatewayUnavailable, statusCode)
	}

	var errResp struct {
		Name        string `json:"name"`
		Message     string `json:"message"`
		ErrorField  string `json:"error"`
		Description string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &errResp)

	code := errResp.Name
	if code == "" {
		code = errResp.ErrorField
	}
	message := errResp.Message
	if message == "" {
		message = errResp.Description
	}
	if message == "" {
		message = "gateway request rejected"
	}

	return &domainErrors.GatewayError{
		Code:    code,
		Message: message,
		Details: string(body),
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// firstCaptureID digs the capture id out of
// purchase_units[0].payments.captures[0].id.
func firstCaptureID(raw map[string]interface{}) string {
	units, ok := raw["purchase_units"].([]interface{})
	if !ok || len(units) == 0 {
		return ""
	}
	unit, ok := units[0].(map[string]interface{})
	if !ok {
		return ""
	}
	payments, ok := unit["payments"].(map[string]interface{})
	if !ok {
		return ""
	}
	captures, ok := payments["captures"].([]interface{})
	if !ok || len(captures) == 0 {
		return ""
	}
	capture, ok := captures[0].(map[string]interface{})
	if !ok {
		return ""
	}
	return stringField(capture, "id")
}
