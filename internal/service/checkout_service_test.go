package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/gateway"
)

func newTestCheckoutService(eventRepo *MockEventRepository, cache *MockInventoryCache, gw *MockPaymentGateway) CheckoutService {
	return NewCheckoutService(eventRepo, cache, gw, &CheckoutServiceConfig{
		MaxPerOrder: 10,
		Currency:    "usd",
	})
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		Title:            "Warehouse Night",
		Price:            35.00,
		TicketsTotal:     100,
		TicketsRemaining: 40,
	}, nil)
	gw.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req *gateway.CheckoutSessionRequest) bool {
		return req.EventID == "evt-1" && req.Quantity == 2 && req.UnitPrice == 35.00
	})).Return(&gateway.CheckoutSessionResponse{
		SessionID: "cs_test_abc",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_abc",
	}, nil)
	eventRepo.On("DecrementRemaining", mock.Anything, "evt-1", 2).Return(nil)
	cache.On("Invalidate", mock.Anything, "evt-1").Return(nil)

	resp, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
		EventID:  "evt-1",
		Quantity: 2,
		Email:    "fan@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", resp.URL)
	eventRepo.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestCheckoutService_Checkout_InsufficientInventory(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	// 3 remaining, 5 requested: rejected before the gateway is touched and
	// with no counter mutation
	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		TicketsTotal:     100,
		TicketsRemaining: 3,
	}, nil)

	_, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
		EventID:  "evt-1",
		Quantity: 5,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	eventRepo.AssertNotCalled(t, "DecrementRemaining", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_DecrementFailureStillReturnsURL(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		TicketsTotal:     100,
		TicketsRemaining: 40,
	}, nil)
	gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&gateway.CheckoutSessionResponse{
		SessionID: "cs_test_abc",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_abc",
	}, nil)
	// The session exists at this point, so a failed decrement must not
	// surface to the customer
	eventRepo.On("DecrementRemaining", mock.Anything, "evt-1", 2).Return(errors.New("connection reset"))

	resp, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
		EventID:  "evt-1",
		Quantity: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", resp.URL)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_GatewayFailure(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		TicketsTotal:     100,
		TicketsRemaining: 40,
	}, nil)
	gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe unavailable"))

	_, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
		EventID:  "evt-1",
		Quantity: 2,
	})

	assert.ErrorIs(t, err, domain.ErrPaymentGateway)
	// No session, no provisional decrement
	eventRepo.AssertNotCalled(t, "DecrementRemaining", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_EventNotFound(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	eventRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrEventNotFound)

	_, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
		EventID:  "missing",
		Quantity: 1,
	})

	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestCheckoutService_Checkout_InvalidQuantity(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	tests := []struct {
		name     string
		quantity int
	}{
		{"zero", 0},
		{"negative", -3},
		{"over max per order", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
				EventID:  "evt-1",
				Quantity: tt.quantity,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		})
	}

	eventRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_CacheInvalidateFailureIsSwallowed(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	gw := new(MockPaymentGateway)
	service := newTestCheckoutService(eventRepo, cache, gw)

	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		TicketsTotal:     100,
		TicketsRemaining: 40,
	}, nil)
	gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&gateway.CheckoutSessionResponse{
		SessionID: "cs_test_abc",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_abc",
	}, nil)
	eventRepo.On("DecrementRemaining", mock.Anything, "evt-1", 2).Return(nil)
	cache.On("Invalidate", mock.Anything, "evt-1").Return(errors.New("redis down"))

	resp, err := service.Checkout(context.Background(), &dto.CheckoutRequest{
		EventID:  "evt-1",
		Quantity: 2,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.URL)
}
