package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/metrics"
	"github.com/Tekthree/ticket-shameless-sub001/internal/repository"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/logger"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

// ReconciliationServiceConfig holds reconciliation settings
type ReconciliationServiceConfig struct {
	// EventTimeout bounds the work done per event during batch runs
	EventTimeout time.Duration
}

// reconciliationService implements ReconciliationService
type reconciliationService struct {
	eventRepo repository.EventRepository
	orderRepo repository.OrderRepository
	cache     repository.InventoryCache
	publisher AuditPublisher
	config    *ReconciliationServiceConfig
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	eventRepo repository.EventRepository,
	orderRepo repository.OrderRepository,
	cache repository.InventoryCache,
	publisher AuditPublisher,
	cfg *ReconciliationServiceConfig,
) ReconciliationService {
	if cfg == nil || cfg.EventTimeout <= 0 {
		cfg = &ReconciliationServiceConfig{EventTimeout: 5 * time.Second}
	}
	if publisher == nil {
		publisher = NewNoOpAuditPublisher()
	}
	return &reconciliationService{
		eventRepo: eventRepo,
		orderRepo: orderRepo,
		cache:     cache,
		publisher: publisher,
		config:    cfg,
	}
}

// Check recomputes the remaining count from the order ledger and compares
// it to the stored counter. Pure read, never writes.
func (s *reconciliationService) Check(ctx context.Context, eventID string) (*domain.ReconciliationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reconciliation.check")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "missing event id")
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sold, err := s.orderRepo.SumCompletedQuantity(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sum completed orders")
		return nil, fmt.Errorf("failed to sum completed orders: %w", err)
	}

	counts := domain.NewReconciliationCounts(event.TicketsTotal, event.TicketsRemaining, sold)
	span.SetAttributes(
		attribute.Int("calculated_remaining", counts.CalculatedRemaining),
		attribute.Int("discrepancy", counts.Discrepancy),
	)
	metrics.RecordReconciliationCheck(ctx, eventID, counts.InSync())

	span.SetStatus(codes.Ok, "")
	return &domain.ReconciliationResult{
		EventID: eventID,
		Fixed:   false,
		Counts:  counts,
	}, nil
}

// Fix checks the event and, when drifted, writes the recomputed count back
// along with the matching sold-out flag. Running it again immediately is a
// no-op, so redundant scheduled runs are harmless.
func (s *reconciliationService) Fix(ctx context.Context, eventID string) (*domain.ReconciliationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reconciliation.fix")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := s.Check(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if result.Counts.InSync() {
		span.SetStatus(codes.Ok, "")
		return result, nil
	}

	before := result.Counts
	after := domain.ReconciliationCounts{
		TicketsTotal:        before.TicketsTotal,
		CurrentRemaining:    before.CalculatedRemaining,
		CalculatedRemaining: before.CalculatedRemaining,
		Discrepancy:         0,
	}
	soldOut := before.CalculatedRemaining <= 0

	if err := s.eventRepo.SetRemaining(ctx, eventID, before.CalculatedRemaining, soldOut); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to correct counter")
		return nil, fmt.Errorf("failed to correct counter: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			logger.Get().Warn(fmt.Sprintf("Failed to invalidate inventory cache for event %s: %v", eventID, err))
		}
	}

	if err := s.publisher.PublishCounterCorrected(ctx, eventID, before, after); err != nil {
		logger.Get().Warn(fmt.Sprintf("Failed to publish counter corrected event for event %s: %v", eventID, err))
	}

	metrics.RecordCounterCorrection(ctx, eventID, before.Discrepancy)
	logger.Get().Info(fmt.Sprintf("Corrected ticket counter for event %s: %d -> %d",
		eventID, before.CurrentRemaining, after.CurrentRemaining))

	span.SetAttributes(attribute.Bool("fixed", true))
	span.SetStatus(codes.Ok, "")
	return &domain.ReconciliationResult{
		EventID: eventID,
		Fixed:   true,
		Counts:  after,
		Before:  &before,
		After:   &after,
	}, nil
}

// CheckAll checks every event
func (s *reconciliationService) CheckAll(ctx context.Context) (*domain.ReconciliationReport, error) {
	return s.runAll(ctx, "service.reconciliation.check_all", s.Check)
}

// FixAll fixes every event
func (s *reconciliationService) FixAll(ctx context.Context) (*domain.ReconciliationReport, error) {
	return s.runAll(ctx, "service.reconciliation.fix_all", s.Fix)
}

// runAll applies op to every event with a per-event timeout. One event's
// failure never stops the sweep; failures are collected into the report.
func (s *reconciliationService) runAll(
	ctx context.Context,
	spanName string,
	op func(ctx context.Context, eventID string) (*domain.ReconciliationResult, error),
) (*domain.ReconciliationReport, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	report := &domain.ReconciliationReport{
		StartedAt: time.Now().UTC(),
	}

	ids, err := s.eventRepo.ListIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list events")
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, domain.ReconciliationError{
				EventID: id,
				Message: ctx.Err().Error(),
			})
			continue
		}

		eventCtx, cancel := context.WithTimeout(ctx, s.config.EventTimeout)
		result, err := op(eventCtx, id)
		cancel()

		if err != nil {
			logger.Get().Warn(fmt.Sprintf("Reconciliation failed for event %s: %v", id, err))
			report.Errors = append(report.Errors, domain.ReconciliationError{
				EventID: id,
				Message: err.Error(),
			})
			continue
		}

		report.Checked++
		if result.Fixed {
			report.Fixed++
		}
		report.Results = append(report.Results, *result)
	}

	report.FinishedAt = time.Now().UTC()
	span.SetAttributes(
		attribute.Int("checked", report.Checked),
		attribute.Int("fixed", report.Fixed),
		attribute.Int("errors", len(report.Errors)),
	)
	span.SetStatus(codes.Ok, "")
	return report, nil
}

// Ensure reconciliationService implements ReconciliationService
var _ ReconciliationService = (*reconciliationService)(nil)
