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
	"github.com/Tekthree/ticket-shameless-sub001/internal/repository"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
	cache     repository.InventoryCache
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository, cache repository.InventoryCache) EventService {
	return &eventService{
		eventRepo: eventRepo,
		cache:     cache,
	}
}

// CreateEvent creates a new event with a full ticket allocation
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create_event")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidEventTitle, msg)
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Description:      req.Description,
		Venue:            req.Venue,
		Date:             req.Date,
		Price:            req.Price,
		TicketsTotal:     req.TicketsTotal,
		TicketsRemaining: req.TicketsTotal,
		SoldOut:          req.TicketsTotal <= 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create event")
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetEventByID retrieves an event by ID
func (s *eventService) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_event_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "missing event id")
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// ListEvents retrieves a filtered page of events
func (s *eventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_events")
	defer span.End()

	if filter == nil {
		filter = &dto.EventListFilter{}
	}
	filter.SetDefaults()

	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return events, total, nil
}

// UpdateEvent applies partial updates to an event. The sold-out flag is
// recomputed from the resulting counts, and the remaining count is clamped
// into [0, total] when the allocation shrinks.
func (s *eventService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "missing event id")
		return nil, domain.ErrInvalidEventID
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidEventTitle, msg)
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	if req.TicketsTotal != nil {
		// Growing the allocation frees the difference; shrinking clamps the
		// remaining count into the new bounds.
		delta := *req.TicketsTotal - event.TicketsTotal
		event.TicketsTotal = *req.TicketsTotal
		event.TicketsRemaining += delta
		if event.TicketsRemaining < 0 {
			event.TicketsRemaining = 0
		}
		if event.TicketsRemaining > event.TicketsTotal {
			event.TicketsRemaining = event.TicketsTotal
		}
	}
	event.SoldOut = event.TicketsRemaining <= 0
	event.UpdatedAt = time.Now().UTC()

	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update event")
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			logger.Get().Warn(fmt.Sprintf("Failed to invalidate inventory cache for event %s: %v", id, err))
		}
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// DeleteEvent removes an event. Ledger rows keep their history with the
// event link cleared by the schema.
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	if id == "" {
		span.SetStatus(codes.Error, "missing event id")
		return domain.ErrInvalidEventID
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			logger.Get().Warn(fmt.Sprintf("Failed to invalidate inventory cache for event %s: %v", id, err))
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// TicketsRemaining serves the public counter through a short-TTL cache.
// Cache failures fall through to the database; the counter read must not
// depend on Redis being up.
func (s *eventService) TicketsRemaining(ctx context.Context, eventID string) (int, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.tickets_remaining")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "missing event id")
		return 0, false, domain.ErrInvalidEventID
	}

	if s.cache != nil {
		remaining, soldOut, ok, err := s.cache.GetRemaining(ctx, eventID)
		if err != nil {
			logger.Get().Warn(fmt.Sprintf("Inventory cache read failed for event %s: %v", eventID, err))
		} else if ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			span.SetStatus(codes.Ok, "")
			return remaining, soldOut, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, err
	}

	if s.cache != nil {
		if err := s.cache.SetRemaining(ctx, eventID, event.TicketsRemaining, event.SoldOut); err != nil {
			logger.Get().Warn(fmt.Sprintf("Inventory cache write failed for event %s: %v", eventID, err))
		}
	}

	span.SetStatus(codes.Ok, "")
	return event.TicketsRemaining, event.SoldOut, nil
}

// Ensure eventService implements EventService
var _ EventService = (*eventService)(nil)
