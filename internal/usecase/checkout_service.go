package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/enrollment"
	domainErrors "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/errors"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/gateway"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/repository"
)

const defaultCurrency = "USD"

// GatewayResolver hands out a gateway client for a payment method string
type GatewayResolver interface {
	GetFromString(method string) (gateway.Gateway, error)
}

// CheckoutService owns the transaction state machine. It is the only writer
// of transaction status and payment rows; gateway clients return protocol
// data and never touch the ledger. Concurrent callbacks are serialized by
// the ledger's conditional transition, not by in-process locks, so the
// handler scales across processes.
type CheckoutService struct {
	transactionRepo repository.TransactionRepository
	paymentRepo     repository.PaymentRepository
	mappingRepo     repository.OrderMappingRepository
	gateways        GatewayResolver
	dispatcher      enrollment.Dispatcher
	logger          *zap.Logger
}

func NewCheckoutService(
	transactionRepo repository.TransactionRepository,
	paymentRepo repository.PaymentRepository,
	mappingRepo repository.OrderMappingRepository,
	gateways GatewayResolver,
	dispatcher enrollment.Dispatcher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		transactionRepo: transactionRepo,
		paymentRepo:     paymentRepo,
		mappingRepo:     mappingRepo,
		gateways:        gateways,
		dispatcher:      dispatcher,
		logger:          logger,
	}
}

// PurchaseItem is one cart line: a course at its current price, frozen into
// the transaction at creation.
type PurchaseItem struct {
	CourseID       uuid.UUID
	UnitPriceMinor int64
	Quantity       int
}

// StartOptions carries protocol parameters that are not part of the cart
type StartOptions struct {
	Currency string
	ClientIP string
	BankCode string
	Locale   string
}

// StartPaymentResult is the redirect target handed back to the boundary
type StartPaymentResult struct {
	TransactionID uuid.UUID
	RedirectURL   string
}

// StartPayment validates the cart, creates the pending transaction, asks the
// gateway for a redirect target, and persists any external order mapping
// before the URL is returned. That ordering is load-bearing: a capture
// arriving before the mapping row exists could not be resolved.
func (s *CheckoutService) StartPayment(ctx context.Context, method string, userID uuid.UUID, items []PurchaseItem, opts StartOptions) (*StartPaymentResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", domainErrors.ErrInvalidRequest)
	}

	var total int64
	modelItems := make([]model.TransactionItem, 0, len(items))
	for _, item := range items {
		if item.UnitPriceMinor < 0 {
			return nil, fmt.Errorf("%w: negative price for course %s", domainErrors.ErrInvalidRequest, item.CourseID)
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		total += item.UnitPriceMinor * int64(quantity)
		modelItems = append(modelItems, model.TransactionItem{
			CourseID:       item.CourseID,
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       quantity,
		})
	}

	currency := opts.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	actor := userID.String()
	tx := &model.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		AmountMinor: total,
		Currency:    currency,
		CreatedBy:   &actor,
		Items:       modelItems,
	}
	if err := s.transactionRepo.CreatePending(ctx, tx); err != nil {
		return nil, err
	}

	gw, err := s.gateways.GetFromString(method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrInvalidRequest, err)
	}

	intent, err := gw.CreateIntent(ctx, &gateway.CreateIntentRequest{
		TransactionID: tx.ID,
		AmountMinor:   total,
		Currency:      currency,
		OrderInfo:     fmt.Sprintf("Course purchase %s", tx.ID),
		ClientIP:      opts.ClientIP,
		BankCode:      opts.BankCode,
		Locale:        opts.Locale,
	})
	if err != nil {
		s.logger.Error("failed to create payment intent",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("method", method),
			zap.Error(err))
		return nil, err
	}

	if intent.ExternalOrderID != "" {
		mapping := &model.GatewayOrderMapping{
			ExternalOrderID: intent.ExternalOrderID,
			TransactionID:   tx.ID,
			Method:          gw.Name(),
		}
		if err := s.mappingRepo.Create(ctx, mapping); err != nil {
			return nil, err
		}
	}

	s.logger.Info("payment started",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("method", method),
		zap.Int64("amount_minor", total),
		zap.String("currency", currency))

	return &StartPaymentResult{
		TransactionID: tx.ID,
		RedirectURL:   intent.RedirectURL,
	}, nil
}

// ReconciliationOutcome reports what a callback did to the ledger
type ReconciliationOutcome struct {
	TransactionID uuid.UUID
	Status        model.TransactionStatus
	Method        model.PaymentMethod
	AmountMinor   int64
	// Duplicate is set when the conditional transition found the row already
	// moved by an earlier delivery of the same callback.
	Duplicate bool
}

// HandleCallback verifies an inbound gateway callback and reconciles it into
// the ledger. Replays are safe: the conditional transition applies at most
// once, and enrollment is dispatched only by the delivery that won it. A
// callback that fails verification leaves the transaction pending but is
// still recorded as a failed payment attempt for audit.
func (s *CheckoutService) HandleCallback(ctx context.Context, method string, params map[string]string) (*ReconciliationOutcome, error) {
	gw, err := s.gateways.GetFromString(method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrInvalidRequest, err)
	}

	result, err := gw.VerifyCallback(ctx, params)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSignatureInvalid) {
			s.recordRejectedCallback(ctx, gw.Name(), params)
		}
		return nil, err
	}

	tx, err := s.resolveTransaction(ctx, result)
	if err != nil {
		return nil, err
	}

	succeeded := result.Succeeded
	if result.TxnRef != "" && result.AmountMinor != tx.AmountMinor {
		// Signed amount disagrees with the ledger; never complete from it.
		s.logger.Warn("callback amount mismatch",
			zap.String("transaction_id", tx.ID.String()),
			zap.Int64("callback_amount", result.AmountMinor),
			zap.Int64("ledger_amount", tx.AmountMinor))
		succeeded = false
	}

	target := model.TransactionStatusFailed
	if succeeded {
		target = model.TransactionStatusCompleted
	}

	applied, err := s.transactionRepo.TransitionStatus(ctx, tx.ID, model.TransactionStatusPending, target)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, tx.ID, gw.Name(), result, applied, target)

	outcome := &ReconciliationOutcome{
		TransactionID: tx.ID,
		Status:        target,
		Method:        gw.Name(),
		AmountMinor:   tx.AmountMinor,
		Duplicate:     !applied,
	}

	if !applied {
		// Already reconciled by a concurrent or earlier delivery. Not an
		// error; the attempt row above is the audit trail.
		s.logger.Info("duplicate callback ignored",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("method", string(gw.Name())))
		if current, err := s.transactionRepo.GetByID(ctx, tx.ID); err == nil && current != nil {
			outcome.Status = current.Status
		}
		return outcome, nil
	}

	if target == model.TransactionStatusCompleted {
		s.dispatchEnrollments(ctx, tx)
	}

	s.logger.Info("callback reconciled",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("method", string(gw.Name())),
		zap.String("status", string(target)))

	return outcome, nil
}

// Refund moves a completed transaction to refunded, recording reason and
// amount. The refund itself is settled out of band with the gateway.
func (s *CheckoutService) Refund(ctx context.Context, transactionID uuid.UUID, reason string, amountMinor int64, actor string) (*model.Transaction, error) {
	if reason == "" || amountMinor <= 0 {
		return nil, fmt.Errorf("%w: refund requires a reason and a positive amount", domainErrors.ErrInvalidRequest)
	}

	tx, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domainErrors.ErrTransactionNotFound
	}
	if amountMinor > tx.AmountMinor {
		return nil, fmt.Errorf("%w: refund amount exceeds transaction total", domainErrors.ErrInvalidRequest)
	}

	applied, err := s.transactionRepo.MarkRefunded(ctx, transactionID, reason, amountMinor, actor)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: transaction %s is not completed", domainErrors.ErrInvalidRequest, transactionID)
	}

	s.logger.Info("transaction refunded",
		zap.String("transaction_id", transactionID.String()),
		zap.Int64("refund_amount_minor", amountMinor),
		zap.String("actor", actor))

	return s.transactionRepo.GetByID(ctx, transactionID)
}

// GetTransaction returns a transaction owned by the user
func (s *CheckoutService) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*model.Transaction, error) {
	tx, err := s.transactionRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.UserID != userID {
		return nil, domainErrors.ErrTransactionNotFound
	}
	return tx, nil
}

// ListUserTransactions returns the user's purchase history, newest first
func (s *CheckoutService) ListUserTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Transaction, int64, error) {
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.transactionRepo.ListByUser(ctx, userID, limit, offset)
}

// resolveTransaction finds the local transaction for an authenticated
// callback: by the embedded reference for the redirect protocol, through the
// order mapping for the order protocol.
func (s *CheckoutService) resolveTransaction(ctx context.Context, result *gateway.CallbackResult) (*model.Transaction, error) {
	var id uuid.UUID

	switch {
	case result.TxnRef != "":
		parsed, err := uuid.Parse(result.TxnRef)
		if err != nil {
			return nil, fmt.Errorf("%w: bad transaction reference %q", domainErrors.ErrTransactionNotFound, result.TxnRef)
		}
		id = parsed
	case result.ExternalOrderID != "":
		mapping, err := s.mappingRepo.GetByExternalID(ctx, result.ExternalOrderID)
		if err != nil {
			return nil, err
		}
		if mapping == nil {
			return nil, fmt.Errorf("%w: unknown external order %q", domainErrors.ErrTransactionNotFound, result.ExternalOrderID)
		}
		id = mapping.TransactionID
	default:
		return nil, domainErrors.ErrTransactionNotFound
	}

	tx, err := s.transactionRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domainErrors.ErrTransactionNotFound
	}
	return tx, nil
}

// recordAttempt appends the payment row for an authenticated callback. Only
// the delivery that won the transition to completed records success; later
// deliveries of the same callback are kept as pending attempts so at most
// one success row exists per transaction.
func (s *CheckoutService) recordAttempt(ctx context.Context, transactionID uuid.UUID, method model.PaymentMethod, result *gateway.CallbackResult, applied bool, target model.TransactionStatus) {
	status := model.PaymentStatusFailed
	if target == model.TransactionStatusCompleted {
		if applied {
			status = model.PaymentStatusSuccess
		} else {
			status = model.PaymentStatusPending
		}
	}

	payment := &model.Payment{
		TransactionID:   transactionID,
		Method:          method,
		Status:          status,
		GatewayResponse: model.JSONB(result.Raw),
	}
	if result.GatewayTxnID != "" {
		gatewayTxnID := result.GatewayTxnID
		payment.GatewayTxnID = &gatewayTxnID
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// The status transition already happened; losing the audit row is
		// logged, not propagated.
		s.logger.Error("failed to record payment attempt",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err))
	}
}

// recordRejectedCallback keeps an audit trail of callbacks that failed
// verification. The transaction, when resolvable, stays pending.
func (s *CheckoutService) recordRejectedCallback(ctx context.Context, method model.PaymentMethod, params map[string]string) {
	txnRef := params["vnp_TxnRef"]
	if txnRef == "" {
		s.logger.Warn("rejected callback carried no transaction reference",
			zap.String("method", string(method)))
		return
	}
	id, err := uuid.Parse(txnRef)
	if err != nil {
		s.logger.Warn("rejected callback carried malformed transaction reference",
			zap.String("method", string(method)),
			zap.String("txn_ref", txnRef))
		return
	}

	raw := make(map[string]interface{}, len(params))
	for k, v := range params {
		raw[k] = v
	}

	payment := &model.Payment{
		TransactionID:   id,
		Method:          method,
		Status:          model.PaymentStatusFailed,
		GatewayResponse: model.JSONB(raw),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.Error("failed to record rejected callback",
			zap.String("transaction_id", id.String()),
			zap.Error(err))
	}
}

// dispatchEnrollments grants access for every purchased item. A dispatch
// failure does not roll back the completed transaction; the payment
// genuinely succeeded and the grant is retried out of band.
func (s *CheckoutService) dispatchEnrollments(ctx context.Context, tx *model.Transaction) {
	for _, item := range tx.Items {
		if err := s.dispatcher.GrantAccess(ctx, tx.UserID, item.CourseID); err != nil {
			s.logger.Error("enrollment dispatch failed, queued for retry",
				zap.String("transaction_id", tx.ID.String()),
				zap.String("user_id", tx.UserID.String()),
				zap.String("course_id", item.CourseID.String()),
				zap.Error(err))
		}
	}
}
