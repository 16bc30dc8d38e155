package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/errors"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/middleware/auth"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/usecase"
)

// CheckoutHandler exposes start-payment and transaction queries
type CheckoutHandler struct {
	checkout *usecase.CheckoutService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout *usecase.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		validate: validator.New(),
		logger:   logger,
	}
}

type startPaymentItem struct {
	CourseID       string `json:"course_id" validate:"required,uuid4"`
	UnitPriceMinor int64  `json:"unit_price_minor" validate:"gte=0"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
}

type StartPaymentRequest struct {
	Method   string             `json:"method" validate:"required,oneof=vnpay paypal"`
	Currency string             `json:"currency" validate:"omitempty,len=3"`
	BankCode string             `json:"bank_code"`
	Locale   string             `json:"locale"`
	Items    []startPaymentItem `json:"items" validate:"required,min=1,dive"`
}

type StartPaymentResponse struct {
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
}

// StartPayment creates a pending transaction and returns the gateway
// redirect URL.
func (h *CheckoutHandler) StartPayment(c echo.Context) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req StartPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	items := make([]usecase.PurchaseItem, 0, len(req.Items))
	for _, item := range req.Items {
		courseID, err := uuid.Parse(item.CourseID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id must be a valid UUID"})
		}
		items = append(items, usecase.PurchaseItem{
			CourseID:       courseID,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
		})
	}

	result, err := h.checkout.StartPayment(c.Request().Context(), req.Method, user.UserID, items, usecase.StartOptions{
		Currency: req.Currency,
		ClientIP: c.RealIP(),
		BankCode: req.BankCode,
		Locale:   req.Locale,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, StartPaymentResponse{
		TransactionID: result.TransactionID.String(),
		RedirectURL:   result.RedirectURL,
	})
}

// GetTransaction returns one of the caller's transactions with its items
func (h *CheckoutHandler) GetTransaction(c echo.Context) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transaction id must be a valid UUID"})
	}

	tx, err := h.checkout.GetTransaction(c.Request().Context(), id, user.UserID)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, tx)
}

// ListTransactions returns the caller's purchase history
func (h *CheckoutHandler) ListTransactions(c echo.Context) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	limit := intQueryParam(c, "limit", 10)
	offset := intQueryParam(c, "offset", 0)

	transactions, total, err := h.checkout.ListUserTransactions(c.Request().Context(), user.UserID, limit, offset)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"transactions": transactions,
		"total":        total,
	})
}

type RefundRequest struct {
	Reason      string `json:"reason" validate:"required"`
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
}

// Refund moves a completed transaction to refunded. Only callers whose
// token carries the admin role may refund; ordinary users go through
// support.
func (h *CheckoutHandler) Refund(c echo.Context) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if user.Role != auth.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin role required"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transaction id must be a valid UUID"})
	}

	var req RefundRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	tx, err := h.checkout.Refund(c.Request().Context(), id, req.Reason, req.AmountMinor, user.UserID.String())
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, tx)
}

func (h *CheckoutHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, domainErrors.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
	case errors.Is(err, domainErrors.ErrGatewayUnavailable):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable, try again"})
	default:
		h.logger.Error("checkout request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	value := c.QueryParam(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
