package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// alphanumericChars for generating Stripe-compatible IDs
const alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAlphanumeric(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumericChars[rand.Intn(len(alphanumericChars))]
	}
	return string(b)
}

// MockGateway implements PaymentGateway for testing and local development
type MockGateway struct {
	config   *MockGatewayConfig
	sessions sync.Map
	mu       sync.RWMutex
}

// MockGatewayConfig holds settings for the mock gateway
type MockGatewayConfig struct {
	// SuccessRate is the probability of session creation succeeding (0.0 to 1.0)
	SuccessRate float64

	// DelayMs is the simulated provider latency in milliseconds
	DelayMs int
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		SuccessRate: 1.0,
		DelayMs:     0,
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}

	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}

	return &MockGateway{config: config}
}

// CreateCheckoutSession creates a fake checkout session with a
// Stripe-compatible session ID
func (g *MockGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout session request is required")
	}

	if g.config.DelayMs > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		}
	}

	if rand.Float64() >= g.successRate() {
		return nil, fmt.Errorf("mock gateway: session creation failed")
	}

	sessionID := fmt.Sprintf("cs_test_%s", randomAlphanumeric(24))
	url := fmt.Sprintf("https://checkout.stripe.com/c/pay/mock/%s", sessionID)

	g.sessions.Store(sessionID, req)

	return &CheckoutSessionResponse{
		SessionID: sessionID,
		URL:       url,
	}, nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

// SetSuccessRate updates the success rate (for testing)
func (g *MockGateway) SetSuccessRate(rate float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	g.config.SuccessRate = rate
}

func (g *MockGateway) successRate() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.SuccessRate
}

// GetSession retrieves a stored session request (for testing)
func (g *MockGateway) GetSession(sessionID string) (*CheckoutSessionRequest, bool) {
	v, ok := g.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*CheckoutSessionRequest), true
}

// Ensure MockGateway implements PaymentGateway
var _ PaymentGateway = (*MockGateway)(nil)
