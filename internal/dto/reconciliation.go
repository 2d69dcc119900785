package dto

import "github.com/Tekthree/ticket-shameless-sub001/internal/domain"

// VerifyCountsRequest is the body of POST /tickets/verify-counts
type VerifyCountsRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Fix     bool   `json:"fix"`
}

// Validate validates the VerifyCountsRequest
func (r *VerifyCountsRequest) Validate() (bool, string) {
	if r.EventID == "" {
		return false, "eventId is required"
	}
	return true, ""
}

// VerifyCountsResponse reports a single event's reconciliation outcome.
// Before/After are present only when a correction was applied.
type VerifyCountsResponse struct {
	Success bool                         `json:"success"`
	Fixed   bool                         `json:"fixed"`
	Counts  domain.ReconciliationCounts  `json:"counts"`
	Before  *domain.ReconciliationCounts `json:"before,omitempty"`
	After   *domain.ReconciliationCounts `json:"after,omitempty"`
}

// TicketsRemainingResponse is the body of GET /events/{id}/tickets-remaining
type TicketsRemainingResponse struct {
	Success          bool `json:"success"`
	TicketsRemaining int  `json:"ticketsRemaining"`
	SoldOut          bool `json:"soldOut"`
}

// VerifyAllResponse reports a bulk reconciliation run
type VerifyAllResponse struct {
	Success bool                        `json:"success"`
	Report  domain.ReconciliationReport `json:"report"`
}
