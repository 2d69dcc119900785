package domain

import "time"

// ReconciliationCounts compares the denormalized remaining counter against
// the count derived from completed orders. Computed on demand, never stored.
type ReconciliationCounts struct {
	TicketsTotal        int `json:"ticketsTotal"`
	CurrentRemaining    int `json:"currentRemaining"`
	CalculatedRemaining int `json:"calculatedRemaining"`
	Discrepancy         int `json:"discrepancy"`
}

// InSync reports whether the counter matches the ledger
func (c *ReconciliationCounts) InSync() bool {
	return c.Discrepancy == 0
}

// NewReconciliationCounts derives counts from an event's counter fields and
// the summed quantity of its completed orders. Calculated remaining is
// clamped at zero so an oversold event surfaces through the discrepancy,
// not a negative count.
func NewReconciliationCounts(ticketsTotal, currentRemaining, soldQuantity int) ReconciliationCounts {
	calculated := ticketsTotal - soldQuantity
	if calculated < 0 {
		calculated = 0
	}
	return ReconciliationCounts{
		TicketsTotal:        ticketsTotal,
		CurrentRemaining:    currentRemaining,
		CalculatedRemaining: calculated,
		Discrepancy:         currentRemaining - calculated,
	}
}

// ReconciliationResult is the outcome of checking or fixing one event
type ReconciliationResult struct {
	EventID string               `json:"eventId"`
	Fixed   bool                 `json:"fixed"`
	Counts  ReconciliationCounts `json:"counts"`
	// Before/After are populated only when a correction was applied
	Before *ReconciliationCounts `json:"before,omitempty"`
	After  *ReconciliationCounts `json:"after,omitempty"`
}

// ReconciliationReport collects per-event outcomes of a bulk run. One
// event's failure never aborts the rest; failures land in Errors.
type ReconciliationReport struct {
	StartedAt  time.Time              `json:"startedAt"`
	FinishedAt time.Time              `json:"finishedAt"`
	Checked    int                    `json:"checked"`
	Fixed      int                    `json:"fixed"`
	Results    []ReconciliationResult `json:"results"`
	Errors     []ReconciliationError  `json:"errors,omitempty"`
}

// ReconciliationError records a single event's failure inside a bulk run
type ReconciliationError struct {
	EventID string `json:"eventId"`
	Message string `json:"message"`
}
