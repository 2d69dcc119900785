package domain

import (
	"time"
)

// Event represents a ticketed occurrence
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Venue            string    `json:"venue"`
	Date             time.Time `json:"date"`
	Price            float64   `json:"price"`
	TicketsTotal     int       `json:"tickets_total"`
	TicketsRemaining int       `json:"tickets_remaining"`
	SoldOut          bool      `json:"sold_out"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks event fields before create/update
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrInvalidEventTitle
	}
	if e.TicketsTotal < 0 {
		return ErrInvalidTicketsTotal
	}
	if e.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// HasAvailability reports whether quantity tickets can still be sold
func (e *Event) HasAvailability(quantity int) bool {
	return e.TicketsRemaining >= quantity
}
