package vnpay

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
	domainErrors "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/errors"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/gateway"
)

func testClient() *Client {
	c := NewClient(config.VNPayConfig{
		TmnCode:    "TESTMERCH",
		HashSecret: testSecret,
		PayURL:     "https://sandbox.gateway.test/pay",
		ReturnURL:  "http://localhost:8080/api/v1/payments/vnpay/return",
	}, zap.NewNop())
	c.now = func() time.Time {
		return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	}
	return c
}

func TestCreateIntent_BuildsVerifiableURL(t *testing.T) {
	client := testClient()
	txID := uuid.New()

	resp, err := client.CreateIntent(context.Background(), &gateway.CreateIntentRequest{
		TransactionID: txID,
		AmountMinor:   150000,
		Currency:      "USD",
		OrderInfo:     "Course purchase",
		ClientIP:      "203.0.113.7",
		BankCode:      "NCB",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(resp.RedirectURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.RedirectURL, "https://sandbox.gateway.test/pay?"))

	query := parsed.Query()
	assert.Equal(t, "150000", query.Get("vnp_Amount"))
	assert.Equal(t, txID.String(), query.Get("vnp_TxnRef"))
	assert.Equal(t, "TESTMERCH", query.Get("vnp_TmnCode"))
	assert.Equal(t, "NCB", query.Get("vnp_BankCode"))
	assert.Equal(t, "20240501103000", query.Get("vnp_CreateDate"))
	assert.NotEmpty(t, query.Get("vnp_SecureHash"))

	// The URL's own parameters must verify with the shared secret
	params := make(map[string]string)
	for key := range query {
		params[key] = query.Get(key)
	}
	assert.True(t, VerifyParams(params, testSecret))
}

func TestCreateIntent_OmitsEmptyBankCode(t *testing.T) {
	client := testClient()

	resp, err := client.CreateIntent(context.Background(), &gateway.CreateIntentRequest{
		TransactionID: uuid.New(),
		AmountMinor:   5000,
		Currency:      "USD",
		ClientIP:      "203.0.113.7",
	})
	require.NoError(t, err)
	assert.NotContains(t, resp.RedirectURL, "vnp_BankCode")
}

func callbackParams(t *testing.T, txnRef string, amount string, responseCode string) map[string]string {
	t.Helper()
	params := map[string]string{
		"vnp_TmnCode":       "TESTMERCH",
		"vnp_Amount":        amount,
		"vnp_TxnRef":        txnRef,
		"vnp_ResponseCode":  responseCode,
		"vnp_TransactionNo": "14226112",
		"vnp_BankCode":      "NCB",
		"vnp_PayDate":       "20240501103500",
	}
	params[secureHashParam] = HashParams(params, testSecret)
	return params
}

func TestVerifyCallback_Success(t *testing.T) {
	client := testClient()
	txnRef := uuid.New().String()

	result, err := client.VerifyCallback(context.Background(), callbackParams(t, txnRef, "150000", "00"))
	require.NoError(t, err)

	assert.Equal(t, txnRef, result.TxnRef)
	assert.Equal(t, int64(150000), result.AmountMinor)
	assert.Equal(t, "14226112", result.GatewayTxnID)
	assert.True(t, result.Succeeded)
	assert.Equal(t, "00", result.ResponseCode)
	assert.NotContains(t, result.Raw, secureHashParam)
	assert.Equal(t, "150000", result.Raw["vnp_Amount"])
}

func TestVerifyCallback_ValidSignatureFailureCode(t *testing.T) {
	client := testClient()

	// A valid signature with a non-success status is an authenticated
	// failure, not something to ignore.
	result, err := client.VerifyCallback(context.Background(), callbackParams(t, uuid.New().String(), "150000", "24"))
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.Equal(t, "24", result.ResponseCode)
}

func TestVerifyCallback_TamperedAmountFails(t *testing.T) {
	client := testClient()
	params := callbackParams(t, uuid.New().String(), "150000", "00")
	params["vnp_Amount"] = "1"

	result, err := client.VerifyCallback(context.Background(), params)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
}

func TestVerifyCallback_MalformedAmountFailsClosed(t *testing.T) {
	client := testClient()
	params := map[string]string{
		"vnp_TxnRef":       uuid.New().String(),
		"vnp_Amount":       "not-a-number",
		"vnp_ResponseCode": "00",
	}
	params[secureHashParam] = HashParams(params, testSecret)

	result, err := client.VerifyCallback(context.Background(), params)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
}

func TestVerifyCallback_MissingFieldsFailClosed(t *testing.T) {
	client := testClient()

	for _, missing := range []string{"vnp_TxnRef", "vnp_ResponseCode"} {
		t.Run(missing, func(t *testing.T) {
			params := map[string]string{
				"vnp_TxnRef":       uuid.New().String(),
				"vnp_Amount":       "150000",
				"vnp_ResponseCode": "00",
			}
			delete(params, missing)
			params[secureHashParam] = HashParams(params, testSecret)

			result, err := client.VerifyCallback(context.Background(), params)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
		})
	}
}

func TestIsSuccessCode(t *testing.T) {
	assert.True(t, IsSuccessCode("00"))
	assert.True(t, IsSuccessCode(" 00 "))
	assert.False(t, IsSuccessCode("24"))
	assert.False(t, IsSuccessCode(""))
	assert.False(t, IsSuccessCode("0"))
}
