package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/internal/metrics"
	"github.com/Tekthree/ticket-shameless-sub001/internal/repository"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/retry"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

// orderService implements OrderService
type orderService struct {
	orderRepo repository.OrderRepository
	eventRepo repository.EventRepository
	publisher AuditPublisher
	retryCfg  *retry.Config
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	eventRepo repository.EventRepository,
	publisher AuditPublisher,
) OrderService {
	if publisher == nil {
		publisher = NewNoOpAuditPublisher()
	}
	return &orderService{
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		publisher: publisher,
		retryCfg: &retry.Config{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}
}

// RecordCompletedSession appends a completed order to the ledger. The
// append is keyed on the payment session ID, so redelivered webhooks are
// absorbed without error. The order is written even when the event cannot
// be resolved: the ledger is the source of truth and must not drop a paid
// order over a missing catalogue row.
func (s *orderService) RecordCompletedSession(ctx context.Context, session *CompletedSession) error {
	ctx, span := telemetry.StartSpan(ctx, "service.order.record_completed_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", session.SessionID),
		attribute.String("event_id", session.EventID),
		attribute.Int("quantity", session.Quantity),
	)

	if session.SessionID == "" {
		span.SetStatus(codes.Error, "missing session id")
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidSessionID)
	}
	if session.Quantity <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidQuantity)
	}
	if session.AmountTotal < 0 {
		span.SetStatus(codes.Error, "invalid amount")
		return fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidAmount)
	}

	// Cheap duplicate pre-check. The unique index on the session ID is the
	// real guard; this read only skips the insert on obvious redeliveries.
	if existing, err := s.orderRepo.GetBySessionID(ctx, session.SessionID); err == nil && existing != nil {
		span.SetAttributes(attribute.Bool("duplicate", true))
		metrics.RecordWebhookDuplicate(ctx, session.SessionID)
		span.SetStatus(codes.Ok, "")
		return nil
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		CustomerEmail:   session.CustomerEmail,
		CustomerName:    session.CustomerName,
		Quantity:        session.Quantity,
		Status:          domain.OrderStatusCompleted,
		AmountTotal:     session.AmountTotal,
		StripeSessionID: session.SessionID,
		CreatedAt:       time.Now().UTC(),
	}

	if session.EventID != "" {
		if _, err := s.eventRepo.GetByID(ctx, session.EventID); err != nil {
			logger.Get().Warn(fmt.Sprintf("Recording order %s without event link, event %s could not be resolved: %v",
				order.ID, session.EventID, err))
			span.SetAttributes(attribute.Bool("event_unresolved", true))
		} else {
			eventID := session.EventID
			order.EventID = &eventID
		}
	} else {
		logger.Get().Warn(fmt.Sprintf("Recording order %s without event link, session %s carried no event metadata",
			order.ID, session.SessionID))
	}

	err := retry.Do(ctx, s.retryCfg, func(ctx context.Context) error {
		return s.orderRepo.AppendCompleted(ctx, order)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order append failed")
		return fmt.Errorf("failed to append order: %w", err)
	}

	if err := s.publisher.PublishOrderRecorded(ctx, order); err != nil {
		logger.Get().Warn(fmt.Sprintf("Failed to publish order recorded event for order %s: %v", order.ID, err))
	}

	metrics.RecordOrderRecorded(ctx, session.EventID, session.Quantity)
	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByEvent retrieves orders for an event with pagination
func (s *orderService) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Order, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "missing event id")
		return nil, 0, domain.ErrInvalidEventID
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	orders, total, err := s.orderRepo.ListByEvent(ctx, eventID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetStatus(codes.Ok, "")
	return orders, total, nil
}

// SalesSummary aggregates completed order activity for an event
func (s *orderService) SalesSummary(ctx context.Context, eventID string) (*dto.SalesSummaryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.sales_summary")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "missing event id")
		return nil, domain.ErrInvalidEventID
	}

	// The summary is computed for whatever ledger rows reference the event,
	// so the event row must exist for the ID to be meaningful.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	summary, err := s.orderRepo.SalesSummary(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return summary, nil
}

// Ensure orderService implements OrderService
var _ OrderService = (*orderService)(nil)
