package service

import (
	"context"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
)

// CheckoutService is the reservation gate: it validates availability,
// creates the payment session, and provisionally decrements the counter
type CheckoutService interface {
	// Checkout reserves quantity tickets for an event and returns the
	// payment session redirect URL
	Checkout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

// OrderService appends completed orders from payment webhooks and serves
// order reporting
type OrderService interface {
	// RecordCompletedSession appends a completed order for a payment
	// session, absorbing duplicate deliveries silently
	RecordCompletedSession(ctx context.Context, session *CompletedSession) error

	// ListByEvent retrieves orders for an event
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Order, int, error)

	// SalesSummary aggregates completed order activity for an event
	SalesSummary(ctx context.Context, eventID string) (*dto.SalesSummaryResponse, error)
}

// CompletedSession is the provider-independent shape of a completed
// checkout session notification
type CompletedSession struct {
	SessionID     string
	EventID       string
	Quantity      int
	AmountTotal   float64
	CustomerEmail string
	CustomerName  string
}

// ReconciliationService detects and corrects drift between the inventory
// counter and the order ledger
type ReconciliationService interface {
	// Check computes the reconciliation counts for one event. Pure read.
	Check(ctx context.Context, eventID string) (*domain.ReconciliationResult, error)

	// Fix corrects the counter when it drifted, returning before and after
	// counts. A no-op when already in sync.
	Fix(ctx context.Context, eventID string) (*domain.ReconciliationResult, error)

	// CheckAll checks every event; per-event failures are collected, not fatal
	CheckAll(ctx context.Context) (*domain.ReconciliationReport, error)

	// FixAll fixes every event; per-event failures are collected, not fatal
	FixAll(ctx context.Context) (*domain.ReconciliationReport, error)
}

// EventService serves the public catalogue, admin CRUD, and the
// remaining-count read path
type EventService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)
	GetEventByID(ctx context.Context, id string) (*domain.Event, error)
	ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error)
	UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// TicketsRemaining serves the public counter, cached with a short TTL
	TicketsRemaining(ctx context.Context, eventID string) (remaining int, soldOut bool, err error)
}
