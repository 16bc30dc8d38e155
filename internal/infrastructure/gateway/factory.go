package gateway

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
	domainGateway "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/gateway"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/domain/model"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/infrastructure/gateway/paypal"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/infrastructure/gateway/vnpay"
)

// Factory creates gateway clients based on the payment method
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new gateway factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// Get returns a gateway client for the payment method
func (f *Factory) Get(method model.PaymentMethod) (domainGateway.Gateway, error) {
	switch method {
	case model.PaymentMethodVNPay:
		return f.createVNPayClient()
	case model.PaymentMethodPayPal:
		return f.createPayPalClient()
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", method)
	}
}

// GetFromString returns a gateway client from a method string
func (f *Factory) GetFromString(method string) (domainGateway.Gateway, error) {
	// Default to the redirect gateway if not specified
	if method == "" {
		method = string(model.PaymentMethodVNPay)
	}
	return f.Get(model.PaymentMethod(method))
}

func (f *Factory) createVNPayClient() (domainGateway.Gateway, error) {
	if f.config.Service.VNPay.HashSecret == "" {
		return nil, fmt.Errorf("VNPay hash secret not configured")
	}
	return vnpay.NewClient(f.config.Service.VNPay, f.logger), nil
}

func (f *Factory) createPayPalClient() (domainGateway.Gateway, error) {
	if f.config.Service.PayPal.ClientID == "" || f.config.Service.PayPal.Secret == "" {
		return nil, fmt.Errorf("PayPal credentials not configured")
	}
	return paypal.NewClient(f.config.Service.PayPal, f.logger), nil
}
