package domain

import (
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// Order represents a completed or attempted ticket purchase. Only orders
// with status completed count toward sold inventory. EventID is nil when
// the event could not be resolved at insert time (degraded insert) or was
// later removed.
type Order struct {
	ID              string      `json:"id"`
	EventID         *string     `json:"event_id"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerName    string      `json:"customer_name"`
	Quantity        int         `json:"quantity"`
	Status          OrderStatus `json:"status"`
	AmountTotal     float64     `json:"amount_total"`
	StripeSessionID string      `json:"stripe_session_id"`
	CreatedAt       time.Time   `json:"created_at"`
}

// IsCompleted reports whether the order counts toward sold inventory
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// Validate checks order fields before append
func (o *Order) Validate() error {
	if o.StripeSessionID == "" {
		return ErrInvalidSessionID
	}
	if o.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if o.AmountTotal < 0 {
		return ErrInvalidAmount
	}
	return nil
}
