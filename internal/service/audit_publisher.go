package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/kafka"
)

// Audit event types
const (
	AuditOrderRecorded    = "ticket.order_recorded"
	AuditCounterCorrected = "ticket.counter_corrected"
)

// AuditPublisher publishes inventory audit events for downstream consumers
type AuditPublisher interface {
	// PublishOrderRecorded announces a newly appended completed order
	PublishOrderRecorded(ctx context.Context, order *domain.Order) error

	// PublishCounterCorrected announces a reconciliation correction
	PublishCounterCorrected(ctx context.Context, eventID string, before, after domain.ReconciliationCounts) error

	// Close closes the publisher
	Close() error
}

// KafkaAuditPublisher implements AuditPublisher using Kafka
type KafkaAuditPublisher struct {
	producer *kafka.Producer
	topic    string
}

// AuditPublisherConfig contains configuration for the audit publisher
type AuditPublisherConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// NewKafkaAuditPublisher creates a new Kafka audit publisher
func NewKafkaAuditPublisher(ctx context.Context, cfg *AuditPublisherConfig) (*KafkaAuditPublisher, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ticket-events"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ticket-shameless-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaAuditPublisher{
		producer: producer,
		topic:    topic,
	}, nil
}

type orderRecordedEvent struct {
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	OrderID         string    `json:"order_id"`
	TicketEventID   *string   `json:"ticket_event_id"`
	Quantity        int       `json:"quantity"`
	AmountTotal     float64   `json:"amount_total"`
	StripeSessionID string    `json:"stripe_session_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type counterCorrectedEvent struct {
	EventType     string                      `json:"event_type"`
	EventID       string                      `json:"event_id"`
	TicketEventID string                      `json:"ticket_event_id"`
	Before        domain.ReconciliationCounts `json:"before"`
	After         domain.ReconciliationCounts `json:"after"`
	OccurredAt    time.Time                   `json:"occurred_at"`
}

// PublishOrderRecorded announces a newly appended completed order
func (p *KafkaAuditPublisher) PublishOrderRecorded(ctx context.Context, order *domain.Order) error {
	event := orderRecordedEvent{
		EventType:       AuditOrderRecorded,
		EventID:         uuid.New().String(),
		OrderID:         order.ID,
		TicketEventID:   order.EventID,
		Quantity:        order.Quantity,
		AmountTotal:     order.AmountTotal,
		StripeSessionID: order.StripeSessionID,
		OccurredAt:      time.Now(),
	}

	key := order.StripeSessionID
	return p.publish(ctx, AuditOrderRecorded, event.EventID, key, event)
}

// PublishCounterCorrected announces a reconciliation correction
func (p *KafkaAuditPublisher) PublishCounterCorrected(ctx context.Context, eventID string, before, after domain.ReconciliationCounts) error {
	event := counterCorrectedEvent{
		EventType:     AuditCounterCorrected,
		EventID:       uuid.New().String(),
		TicketEventID: eventID,
		Before:        before,
		After:         after,
		OccurredAt:    time.Now(),
	}

	return p.publish(ctx, AuditCounterCorrected, event.EventID, eventID, event)
}

// Close closes the publisher
func (p *KafkaAuditPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaAuditPublisher) publish(ctx context.Context, eventType, eventID, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"event_type":   eventType,
			"event_id":     eventID,
			"content_type": "application/json",
		},
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// NoOpAuditPublisher is a no-op implementation of AuditPublisher, used when
// no brokers are configured and in tests
type NoOpAuditPublisher struct{}

// NewNoOpAuditPublisher creates a new no-op audit publisher
func NewNoOpAuditPublisher() *NoOpAuditPublisher {
	return &NoOpAuditPublisher{}
}

// PublishOrderRecorded is a no-op
func (p *NoOpAuditPublisher) PublishOrderRecorded(ctx context.Context, order *domain.Order) error {
	return nil
}

// PublishCounterCorrected is a no-op
func (p *NoOpAuditPublisher) PublishCounterCorrected(ctx context.Context, eventID string, before, after domain.ReconciliationCounts) error {
	return nil
}

// Close is a no-op
func (p *NoOpAuditPublisher) Close() error {
	return nil
}

// Ensure implementations satisfy AuditPublisher
var (
	_ AuditPublisher = (*KafkaAuditPublisher)(nil)
	_ AuditPublisher = (*NoOpAuditPublisher)(nil)
)
