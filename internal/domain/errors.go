package domain

import "errors"

// Domain errors
var (
	// Event errors
	ErrEventNotFound       = errors.New("event not found")
	ErrInvalidEventID      = errors.New("invalid event id")
	ErrInvalidEventTitle   = errors.New("event title is required")
	ErrInvalidTicketsTotal = errors.New("tickets total cannot be negative")
	ErrInvalidPrice        = errors.New("price cannot be negative")

	// Order errors
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidSessionID = errors.New("invalid payment session id")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidAmount    = errors.New("amount cannot be negative")
	ErrInvalidEmail     = errors.New("invalid customer email")

	// Inventory errors
	ErrInsufficientInventory = errors.New("insufficient tickets remaining")

	// Webhook errors
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// Upstream errors
	ErrPaymentGateway = errors.New("payment gateway failure")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidEventTitle) ||
		errors.Is(err, ErrInvalidTicketsTotal) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidSessionID) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidEmail)
}

// IsInventoryError checks if the error is an availability error
func IsInventoryError(err error) bool {
	return errors.Is(err, ErrInsufficientInventory)
}

// IsSignatureError checks if the error is a webhook authenticity error
func IsSignatureError(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}
