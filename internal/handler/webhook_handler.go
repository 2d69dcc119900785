package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/metrics"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
)

// WebhookHandler handles payment provider webhook events
type WebhookHandler struct {
	orderService  service.OrderService
	webhookSecret string
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(orderService service.OrderService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		orderService:  orderService,
		webhookSecret: webhookSecret,
	}
}

// HandlePaymentWebhook handles POST /webhooks/payment
// Verifies the Stripe signature, then appends a completed order for
// checkout.session.completed events. Duplicate deliveries are absorbed
// silently, so the provider always sees success for a session it already
// delivered.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	log := logger.Get()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to read webhook body: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := h.verifyEvent(c, payload)
	if err != nil {
		if domain.IsSignatureError(err) {
			log.Warn(fmt.Sprintf("Rejected payment webhook: %v", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		log.Error(fmt.Sprintf("Failed to verify payment webhook: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	log.Info(fmt.Sprintf("Received payment webhook event: %s", event.Type))

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutSessionCompleted(c, *event)
	default:
		log.Info(fmt.Sprintf("Unhandled event type: %s", event.Type))
		c.JSON(http.StatusOK, dto.WebhookResponse{Received: true, Message: "Event type not handled"})
	}
}

// verifyEvent authenticates the raw payload against the Stripe-Signature
// header. Both a missing header and a failed HMAC check map to the
// signature sentinel; the caller must not process the payload either way.
func (h *WebhookHandler) verifyEvent(c *gin.Context, payload []byte) (*stripe.Event, error) {
	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		metrics.RecordWebhookRejected(c.Request.Context(), "missing_signature")
		return nil, fmt.Errorf("%w: missing Stripe-Signature header", domain.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		metrics.RecordWebhookRejected(c.Request.Context(), "invalid_signature")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	return &event, nil
}

// handleCheckoutSessionCompleted appends the completed order recorded in a
// checkout session
func (h *WebhookHandler) handleCheckoutSessionCompleted(c *gin.Context, event stripe.Event) {
	log := logger.Get()

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error(fmt.Sprintf("Failed to parse checkout.session.completed: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event data"})
		return
	}

	eventID := session.Metadata["event_id"]
	quantity := 1
	if q, err := strconv.Atoi(session.Metadata["quantity"]); err == nil && q > 0 {
		quantity = q
	}

	completed := &service.CompletedSession{
		SessionID:   session.ID,
		EventID:     eventID,
		Quantity:    quantity,
		AmountTotal: float64(session.AmountTotal) / 100,
	}
	if session.CustomerDetails != nil {
		completed.CustomerEmail = session.CustomerDetails.Email
		completed.CustomerName = session.CustomerDetails.Name
	}
	if completed.CustomerEmail == "" {
		completed.CustomerEmail = session.CustomerEmail
	}

	if err := h.orderService.RecordCompletedSession(c.Request.Context(), completed); err != nil {
		log.Error(fmt.Sprintf("Failed to record completed session %s: %v", session.ID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record order"})
		return
	}

	log.Info(fmt.Sprintf("Recorded completed session %s: event_id=%s, quantity=%d",
		session.ID, eventID, quantity))
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}
