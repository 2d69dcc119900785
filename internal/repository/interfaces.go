package repository

import (
	"context"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
)

// EventRepository defines persistence operations for events and their
// inventory counters
type EventRepository interface {
	// Create inserts a new event
	Create(ctx context.Context, event *domain.Event) error

	// GetByID retrieves an event by its ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// List retrieves events matching the filter
	List(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error)

	// ListIDs returns the IDs of every event, for bulk reconciliation
	ListIDs(ctx context.Context) ([]string, error)

	// Update updates event fields
	Update(ctx context.Context, event *domain.Event) error

	// Delete removes an event
	Delete(ctx context.Context, id string) error

	// DecrementRemaining atomically decrements tickets_remaining by quantity,
	// only when at least quantity tickets remain, and recomputes sold_out in
	// the same statement. Returns domain.ErrInsufficientInventory when the
	// conditional update matches no row but the event exists, and
	// domain.ErrEventNotFound when it doesn't.
	DecrementRemaining(ctx context.Context, id string, quantity int) error

	// SetRemaining overwrites tickets_remaining and sold_out, used by
	// reconciliation corrections
	SetRemaining(ctx context.Context, id string, remaining int, soldOut bool) error
}

// OrderRepository defines persistence operations for the order ledger
type OrderRepository interface {
	// AppendCompleted inserts a completed order keyed by its payment session
	// ID. Redelivery of a session already recorded is absorbed silently.
	AppendCompleted(ctx context.Context, order *domain.Order) error

	// SumCompletedQuantity sums quantity over completed orders for an event.
	// No orders means 0.
	SumCompletedQuantity(ctx context.Context, eventID string) (int, error)

	// GetBySessionID retrieves an order by its payment session ID
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)

	// ListByEvent retrieves orders for an event, newest first
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Order, int, error)

	// SalesSummary aggregates completed order counts and revenue for an event
	SalesSummary(ctx context.Context, eventID string) (*dto.SalesSummaryResponse, error)
}

// InventoryCache caches public remaining-count reads with a short TTL
type InventoryCache interface {
	// GetRemaining returns the cached counter, or a miss
	GetRemaining(ctx context.Context, eventID string) (remaining int, soldOut bool, ok bool, err error)

	// SetRemaining caches the counter
	SetRemaining(ctx context.Context, eventID string, remaining int, soldOut bool) error

	// Invalidate drops the cached counter after a write
	Invalidate(ctx context.Context, eventID string) error
}
