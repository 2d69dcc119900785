package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/metrics"
	"github.com/Tekthree/ticket-shameless-sub001/internal/service"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/response"
)

// EventHandler handles the public catalogue and admin event endpoints
type EventHandler struct {
	eventService service.EventService
	orderService service.OrderService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService, orderService service.OrderService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		orderService: orderService,
	}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	events, total, err := h.eventService.ListEvents(c.Request.Context(), &filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := &dto.EventListResponse{
		Events: make([]*dto.EventResponse, 0, len(events)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, event := range events {
		resp.Events = append(resp.Events, toEventResponse(event))
	}

	response.Success(c, resp)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEventByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, toEventResponse(event))
}

// TicketsRemaining handles GET /events/:id/tickets-remaining
// The response shape is fixed: {success, ticketsRemaining, soldOut}.
func (h *EventHandler) TicketsRemaining(c *gin.Context) {
	remaining, soldOut, err := h.eventService.TicketsRemaining(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case domain.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case domain.IsNotFoundError(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read ticket count"})
		}
		return
	}

	c.JSON(http.StatusOK, &dto.TicketsRemainingResponse{
		Success:          true,
		TicketsRemaining: remaining,
		SoldOut:          soldOut,
	})
}

// CreateEvent handles POST /admin/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, toEventResponse(event))
}

// UpdateEvent handles PUT /admin/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, toEventResponse(event))
}

// DeleteEvent handles DELETE /admin/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// ListEventOrders handles GET /admin/events/:id/orders
func (h *EventHandler) ListEventOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, total, err := h.orderService.ListByEvent(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := &dto.OrderListResponse{
		Orders: make([]*dto.OrderResponse, 0, len(orders)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}

	response.Success(c, resp)
}

// SalesSummary handles GET /admin/events/:id/sales-summary
func (h *EventHandler) SalesSummary(c *gin.Context) {
	summary, err := h.orderService.SalesSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, summary)
}

// handleError maps domain errors to HTTP responses for admin endpoints
func (h *EventHandler) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, "NOT_FOUND", err.Error())
	default:
		metrics.RecordError(c.Request.Context(), "internal", c.FullPath())
		response.InternalError(c, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func toEventResponse(event *domain.Event) *dto.EventResponse {
	return &dto.EventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		Venue:            event.Venue,
		Date:             event.Date.Format(time.RFC3339),
		Price:            event.Price,
		TicketsTotal:     event.TicketsTotal,
		TicketsRemaining: event.TicketsRemaining,
		SoldOut:          event.SoldOut,
		CreatedAt:        event.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        event.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderResponse(order *domain.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:              order.ID,
		EventID:         order.EventID,
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		Quantity:        order.Quantity,
		Status:          string(order.Status),
		AmountTotal:     order.AmountTotal,
		StripeSessionID: order.StripeSessionID,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
}
