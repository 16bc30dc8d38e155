package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/errors"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/usecase"
)

// CallbackHandler terminates both gateway callback protocols. These routes
// are unauthenticated: the redirect gateway's callback is authenticated by
// its signature, the order gateway's by the capture call.
type CallbackHandler struct {
	checkout  *usecase.CheckoutService
	clientURL string
	logger    *zap.Logger
}

func NewCallbackHandler(checkout *usecase.CheckoutService, clientURL string, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{
		checkout:  checkout,
		clientURL: clientURL,
		logger:    logger,
	}
}

// HandleVNPayReturn processes the redirect gateway's return callback and
// sends the user to the frontend result page. The redirect carries only a
// coarse status plus reference and amount; the signature and any internal
// error detail never leave this handler.
func (h *CallbackHandler) HandleVNPayReturn(c echo.Context) error {
	params := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	outcome, err := h.checkout.HandleCallback(c.Request().Context(), string(model.PaymentMethodVNPay), params)
	if err != nil {
		h.logger.Warn("redirect callback not reconciled",
			zap.String("txn_ref", params["vnp_TxnRef"]),
			zap.Error(err))
		return c.Redirect(http.StatusFound, h.resultURL("failed", string(model.PaymentMethodVNPay), params["vnp_TxnRef"], params["vnp_Amount"]))
	}

	status := "failed"
	if outcome.Status == model.TransactionStatusCompleted {
		status = "success"
	}

	return c.Redirect(http.StatusFound, h.resultURL(
		status,
		string(outcome.Method),
		outcome.TransactionID.String(),
		fmt.Sprintf("%d", outcome.AmountMinor),
	))
}

// HandlePayPalCapture confirms an approved order after the success redirect
// and returns a confirmation payload.
func (h *CallbackHandler) HandlePayPalCapture(c echo.Context) error {
	token := c.QueryParam("token")
	params := map[string]string{"token": token}

	outcome, err := h.checkout.HandleCallback(c.Request().Context(), string(model.PaymentMethodPayPal), params)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid order token"})
		case errors.Is(err, domainErrors.ErrTransactionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, domainErrors.ErrGatewayUnavailable):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable, try again"})
		default:
			h.logger.Error("order capture failed",
				zap.String("order_token", token),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	message := "Payment failed"
	if outcome.Status == model.TransactionStatusCompleted {
		message = "Payment completed, thank you for your purchase"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":        message,
		"transaction_id": outcome.TransactionID.String(),
		"status":         string(outcome.Status),
		"duplicate":      outcome.Duplicate,
	})
}

func (h *CallbackHandler) resultURL(status, method, txnRef, amount string) string {
	query := url.Values{}
	query.Set("status", status)
	query.Set("method", method)
	if txnRef != "" {
		query.Set("txnRef", txnRef)
	}
	if amount != "" {
		query.Set("amount", amount)
	}
	return h.clientURL + "/payment/result?" + query.Encode()
}
