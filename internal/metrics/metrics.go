package metrics

import (
	"context"
	"sync"

	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Checkout counters
	CheckoutSessionsCreated *telemetry.Counter
	CheckoutRejections      *telemetry.Counter

	// Webhook / order counters
	OrdersRecorded    *telemetry.Counter
	WebhookDuplicates *telemetry.Counter
	WebhookRejections *telemetry.Counter

	// Reconciliation counters
	ReconciliationChecks *telemetry.Counter
	CounterCorrections   *telemetry.Counter

	// Error tracking counters
	ErrorsTotal *telemetry.Counter

	// Histograms
	DiscrepancySize *telemetry.Histogram
	RequestDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all ticket metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	// Checkout counters
	CheckoutSessionsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_checkout_sessions_total",
		Description: "Total number of payment checkout sessions created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CheckoutRejections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_checkout_rejections_total",
		Description: "Total number of checkout requests rejected before payment",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Webhook / order counters
	OrdersRecorded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_orders_recorded_total",
		Description: "Total number of completed orders appended to the ledger",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WebhookDuplicates, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_webhook_duplicates_total",
		Description: "Total number of webhook deliveries absorbed as duplicates",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WebhookRejections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_webhook_rejections_total",
		Description: "Total number of webhook deliveries rejected",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Reconciliation counters
	ReconciliationChecks, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_reconciliation_checks_total",
		Description: "Total number of reconciliation checks performed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CounterCorrections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_counter_corrections_total",
		Description: "Total number of inventory counters corrected by reconciliation",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Error tracking
	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_errors_total",
		Description: "Total number of errors by type",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Histograms
	DiscrepancySize, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticket_reconciliation_discrepancy",
		Description: "Absolute size of counter discrepancies found by reconciliation",
		Unit:        "1",
	}, []float64{1, 2, 5, 10, 25, 50, 100, 250}) // tickets
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticket_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}) // 5ms to 10s
	if err != nil {
		return err
	}

	return nil
}

// RecordCheckoutCreated records a successfully created checkout session
func RecordCheckoutCreated(ctx context.Context, eventID string, quantity int) {
	if CheckoutSessionsCreated != nil {
		CheckoutSessionsCreated.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Int("quantity", quantity),
		)
	}
}

// RecordCheckoutRejected records a checkout rejected before reaching the gateway
func RecordCheckoutRejected(ctx context.Context, eventID, reason string) {
	if CheckoutRejections != nil {
		CheckoutRejections.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordOrderRecorded records a completed order appended to the ledger
func RecordOrderRecorded(ctx context.Context, eventID string, quantity int) {
	if OrdersRecorded != nil {
		OrdersRecorded.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Int("quantity", quantity),
		)
	}
}

// RecordWebhookDuplicate records a webhook delivery absorbed as a duplicate
func RecordWebhookDuplicate(ctx context.Context, sessionID string) {
	if WebhookDuplicates != nil {
		WebhookDuplicates.Inc(ctx,
			attribute.String("session_id", sessionID),
		)
	}
}

// RecordWebhookRejected records a webhook delivery rejected by signature or payload checks
func RecordWebhookRejected(ctx context.Context, reason string) {
	if WebhookRejections != nil {
		WebhookRejections.Inc(ctx,
			attribute.String("reason", reason),
		)
	}
}

// RecordReconciliationCheck records a reconciliation check and its outcome
func RecordReconciliationCheck(ctx context.Context, eventID string, inSync bool) {
	if ReconciliationChecks != nil {
		ReconciliationChecks.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Bool("in_sync", inSync),
		)
	}
}

// RecordCounterCorrection records a counter fixed by reconciliation
func RecordCounterCorrection(ctx context.Context, eventID string, discrepancy int) {
	if CounterCorrections != nil {
		CounterCorrections.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if DiscrepancySize != nil {
		size := discrepancy
		if size < 0 {
			size = -size
		}
		DiscrepancySize.Record(ctx, float64(size),
			attribute.String("event_id", eventID),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
