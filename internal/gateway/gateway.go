package gateway

import (
	"context"
	"fmt"
)

// CheckoutSessionRequest carries what the provider needs to build a hosted
// checkout page for a ticket purchase
type CheckoutSessionRequest struct {
	EventID       string
	EventTitle    string
	Quantity      int
	UnitPrice     float64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSessionResponse is the created session. URL is what the customer
// is redirected to; SessionID is the idempotency key for the eventual
// completed order.
type CheckoutSessionResponse struct {
	SessionID string
	URL       string
}

// PaymentGateway abstracts the hosted payment provider
type PaymentGateway interface {
	// CreateCheckoutSession creates a hosted checkout session
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error)

	// Name returns the gateway name
	Name() string
}

// Config holds settings shared by gateway implementations
type Config struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// NewPaymentGateway creates a gateway by type ("stripe" or "mock")
func NewPaymentGateway(gatewayType string, cfg *Config) (PaymentGateway, error) {
	switch gatewayType {
	case "stripe":
		return NewStripeGateway(cfg)
	case "mock":
		return NewMockGateway(nil), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway: %s", gatewayType)
	}
}
