package vnpay

import (
	"context"
	"fmt"
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
	apiVersion     = "2.1.0"
	commandPay     = "pay"
	orderTypeOther = "other"
	defaultLocale  = "vn"

	// responseCodeSuccess is the gateway's transaction-status code for an
	// approved payment.
	responseCodeSuccess = "00"

	createDateLayout = "20060102150405"
)

// Client implements the redirect gateway: outbound payment URLs signed with
// the merchant secret, inbound return parameters verified with the same
// canonicalization.
type Client struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
	logger     *zap.Logger
	now        func() time.Time
}

func NewClient(cfg config.VNPayConfig, logger *zap.Logger) *Client {
	return &Client{
		tmnCode:    cfg.TmnCode,
		hashSecret: cfg.HashSecret,
		payURL:     cfg.PayURL,
		returnURL:  cfg.ReturnURL,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *Client) Name() model.PaymentMethod {
	return model.PaymentMethodVNPay
}

// CreateIntent builds the signed redirect URL. The local transaction id
// travels as vnp_TxnRef so the return callback can be resolved without a
// mapping table.
func (c *Client) CreateIntent(ctx context.Context, req *gateway.CreateIntentRequest) (*gateway.CreateIntentResponse, error) {
	locale := req.Locale
	if locale == "" {
		locale = defaultLocale
	}

	params := map[string]string{
		"vnp_Version":    apiVersion,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    c.tmnCode,
		"vnp_Amount":     fmt.Sprintf("%d", req.AmountMinor),
		"vnp_CurrCode":   req.Currency,
		"vnp_TxnRef":     req.TransactionID.String(),
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  orderTypeOther,
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  c.returnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": c.now().Format(createDateLayout),
	}
	if req.BankCode != "" {
		params["vnp_BankCode"] = req.BankCode
	}

	query := canonicalize(params)
	signature := HashParams(params, c.hashSecret)
	redirectURL := fmt.Sprintf("%s?%s&%s=%s", c.payURL, query, secureHashParam, signature)

	c.logger.Info("built payment redirect URL",
		zap.String("txn_ref", req.TransactionID.String()),
		zap.Int64("amount_minor", req.AmountMinor),
		zap.String("bank_code", req.BankCode))

	return &gateway.CreateIntentResponse{RedirectURL: redirectURL}, nil
}

// VerifyCallback authenticates the return parameters. Verification fails
// closed: missing signature, mismatched signature, or a malformed amount all
// yield ErrSignatureInvalid and the transaction is never completed from such
// a callback. The gateway's own status code is consulted only after the
// signature checks out.
func (c *Client) VerifyCallback(ctx context.Context, params map[string]string) (*gateway.CallbackResult, error) {
	if !VerifyParams(params, c.hashSecret) {
		c.logger.Warn("callback signature mismatch",
			zap.String("txn_ref", params["vnp_TxnRef"]))
		return nil, domainErrors.ErrSignatureInvalid
	}

	txnRef := params["vnp_TxnRef"]
	if txnRef == "" {
		return nil, fmt.Errorf("%w: missing vnp_TxnRef", domainErrors.ErrSignatureInvalid)
	}

	responseCode := params["vnp_ResponseCode"]
	if responseCode == "" {
		return nil, fmt.Errorf("%w: missing vnp_ResponseCode", domainErrors.ErrSignatureInvalid)
	}

	amountMinor, err := money.ParseMinorUnits(params["vnp_Amount"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrSignatureInvalid, err)
	}

	raw := make(map[string]interface{}, len(params))
	for k, v := range params {
		if k == secureHashParam || k == secureHashTypeParam {
			continue
		}
		raw[k] = v
	}

	return &gateway.CallbackResult{
		TxnRef:       txnRef,
		GatewayTxnID: params["vnp_TransactionNo"],
		AmountMinor:  amountMinor,
		ResponseCode: responseCode,
		Succeeded:    IsSuccessCode(responseCode),
		Raw:          raw,
	}, nil
}

// IsSuccessCode interprets the gateway's transaction-status code. Kept
// separate from signature verification so each is testable on its own.
func IsSuccessCode(code string) bool {
	return strings.TrimSpace(code) == responseCodeSuccess
}
