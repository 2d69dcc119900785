package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
)

// CheckoutHandler handles the public checkout endpoint
type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Checkout handles POST /checkout
// Validates availability, creates a payment session, and returns the
// redirect URL. The response shapes are fixed: {url} on success, {error}
// on failure.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.checkoutService.Checkout(c.Request.Context(), &req)
	if err != nil {
		switch {
		case domain.IsInventoryError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough tickets remaining"})
		case domain.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case domain.IsNotFoundError(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
