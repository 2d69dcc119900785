package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/gateway"
	"github.com/Tekthree/ticket-shameless-sub001/internal/metrics"
	"github.com/Tekthree/ticket-shameless-sub001/internal/repository"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

// CheckoutServiceConfig holds checkout settings
type CheckoutServiceConfig struct {
	// MaxPerOrder caps the quantity a single checkout may request
	MaxPerOrder int
	// Currency is the payment currency code
	Currency string
}

// checkoutService implements CheckoutService
type checkoutService struct {
	eventRepo repository.EventRepository
	cache     repository.InventoryCache
	gateway   gateway.PaymentGateway
	config    *CheckoutServiceConfig
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	eventRepo repository.EventRepository,
	cache repository.InventoryCache,
	paymentGateway gateway.PaymentGateway,
	cfg *CheckoutServiceConfig,
) CheckoutService {
	if cfg == nil {
		cfg = &CheckoutServiceConfig{MaxPerOrder: 10, Currency: "usd"}
	}
	return &checkoutService{
		eventRepo: eventRepo,
		cache:     cache,
		gateway:   paymentGateway,
		config:    cfg,
	}
}

// Checkout validates availability, creates the payment session, then
// provisionally decrements the counter. The decrement is conditional on
// enough tickets remaining, issued as a single statement so racing
// checkouts cannot both take the last tickets. A decrement that fails
// after the session exists is logged and swallowed: the customer still
// gets their checkout link and reconciliation trues the counter up later.
func (s *checkoutService) Checkout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkout.checkout")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.Int("quantity", req.Quantity),
	)

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, msg)
	}
	if s.config.MaxPerOrder > 0 && req.Quantity > s.config.MaxPerOrder {
		span.SetStatus(codes.Error, "quantity exceeds max per order")
		return nil, fmt.Errorf("%w: at most %d tickets per order", domain.ErrInvalidQuantity, s.config.MaxPerOrder)
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Pre-check before touching the payment provider. The conditional
	// decrement below re-checks atomically; this read just avoids creating
	// sessions that can never be honored.
	if !event.HasAvailability(req.Quantity) {
		span.SetStatus(codes.Error, "insufficient inventory")
		metrics.RecordCheckoutRejected(ctx, req.EventID, "insufficient_inventory")
		return nil, domain.ErrInsufficientInventory
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &gateway.CheckoutSessionRequest{
		EventID:       event.ID,
		EventTitle:    event.Title,
		Quantity:      req.Quantity,
		UnitPrice:     event.Price,
		Currency:      s.config.Currency,
		CustomerEmail: req.Email,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment session creation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}

	span.SetAttributes(attribute.String("session_id", session.SessionID))

	// Provisional decrement. The session already exists, so a failure here
	// must not fail the checkout; the counter drifts until reconciliation.
	if err := s.eventRepo.DecrementRemaining(ctx, event.ID, req.Quantity); err != nil {
		span.RecordError(err)
		log := logger.Get()
		log.Warn(fmt.Sprintf("Provisional decrement failed for event %s (session %s), counter will drift until reconciliation: %v",
			event.ID, session.SessionID, err))
	} else if s.cache != nil {
		if err := s.cache.Invalidate(ctx, event.ID); err != nil {
			logger.Get().Warn(fmt.Sprintf("Failed to invalidate inventory cache for event %s: %v", event.ID, err))
		}
	}

	metrics.RecordCheckoutCreated(ctx, event.ID, req.Quantity)
	span.SetStatus(codes.Ok, "")
	return &dto.CheckoutResponse{URL: session.URL}, nil
}

// Ensure checkoutService implements CheckoutService
var _ CheckoutService = (*checkoutService)(nil)
