package dto

import "time"

// CreateEventRequest is the admin request to create an event
type CreateEventRequest struct {
	Title        string    `json:"title" binding:"required,min=1,max=255"`
	Description  string    `json:"description"`
	Venue        string    `json:"venue" binding:"max=255"`
	Date         time.Time `json:"date" binding:"required"`
	Price        float64   `json:"price"`
	TicketsTotal int       `json:"tickets_total"`
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if r.Title == "" {
		return false, "Event title is required"
	}
	if r.TicketsTotal < 0 {
		return false, "Tickets total cannot be negative"
	}
	if r.Price < 0 {
		return false, "Price cannot be negative"
	}
	return true, ""
}

// UpdateEventRequest is the admin request to update an event. Nil fields
// are left unchanged.
type UpdateEventRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string    `json:"description"`
	Venue        *string    `json:"venue" binding:"omitempty,max=255"`
	Date         *time.Time `json:"date"`
	Price        *float64   `json:"price"`
	TicketsTotal *int       `json:"tickets_total"`
}

// Validate validates the UpdateEventRequest
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.Title != nil && *r.Title == "" {
		return false, "Event title cannot be empty"
	}
	if r.TicketsTotal != nil && *r.TicketsTotal < 0 {
		return false, "Tickets total cannot be negative"
	}
	if r.Price != nil && *r.Price < 0 {
		return false, "Price cannot be negative"
	}
	return true, ""
}

// EventResponse is the public representation of an event
type EventResponse struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Venue            string  `json:"venue"`
	Date             string  `json:"date"`
	Price            float64 `json:"price"`
	TicketsTotal     int     `json:"tickets_total"`
	TicketsRemaining int     `json:"tickets_remaining"`
	SoldOut          bool    `json:"sold_out"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// EventListResponse is a page of events
type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// EventListFilter filters and paginates event listings
type EventListFilter struct {
	Search  string `form:"search"`
	SoldOut *bool  `form:"sold_out"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

// SetDefaults sets default values for pagination
func (f *EventListFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// SalesSummaryResponse aggregates an event's order activity
type SalesSummaryResponse struct {
	EventID         string  `json:"event_id"`
	CompletedOrders int     `json:"completed_orders"`
	TicketsSold     int     `json:"tickets_sold"`
	GrossRevenue    float64 `json:"gross_revenue"`
}

// OrderResponse is the admin representation of an order
type OrderResponse struct {
	ID              string  `json:"id"`
	EventID         *string `json:"event_id"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerName    string  `json:"customer_name"`
	Quantity        int     `json:"quantity"`
	Status          string  `json:"status"`
	AmountTotal     float64 `json:"amount_total"`
	StripeSessionID string  `json:"stripe_session_id"`
	CreatedAt       string  `json:"created_at"`
}

// OrderListResponse is a page of orders
type OrderListResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
