package dto

// CheckoutRequest is the body of POST /checkout
type CheckoutRequest struct {
	EventID  string `json:"eventId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Email    string `json:"email"`
}

// Validate validates the CheckoutRequest
func (r *CheckoutRequest) Validate() (bool, string) {
	if r.EventID == "" {
		return false, "eventId is required"
	}
	if r.Quantity < 1 {
		return false, "quantity must be at least 1"
	}
	return true, ""
}

// CheckoutResponse carries the payment session redirect URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a processed webhook delivery
type WebhookResponse struct {
	Received bool   `json:"received"`
	Message  string `json:"message,omitempty"`
}
