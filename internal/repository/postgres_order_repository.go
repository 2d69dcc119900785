package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/telemetry"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL with pgxpool
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// AppendCompleted inserts a completed order. The unique constraint on
// stripe_session_id makes redelivered webhooks insert zero rows; that case
// returns nil so the provider's retry is acknowledged without a duplicate.
func (r *PostgresOrderRepository) AppendCompleted(ctx context.Context, order *domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.append_completed")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.String("stripe_session_id", order.StripeSessionID),
		attribute.Int("quantity", order.Quantity),
	)

	query := `
		INSERT INTO orders (
			id, event_id, customer_email, customer_name, quantity,
			status, amount_total, stripe_session_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
		ON CONFLICT (stripe_session_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		order.ID,
		order.EventID,
		order.CustomerEmail,
		order.CustomerName,
		order.Quantity,
		string(order.Status),
		order.AmountTotal,
		order.StripeSessionID,
		order.CreatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to append order: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetAttributes(attribute.Bool("duplicate", true))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// SumCompletedQuantity sums quantity over completed orders for an event
func (r *PostgresOrderRepository) SumCompletedQuantity(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.sum_completed_quantity")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM orders
		WHERE event_id = $1 AND status = 'completed'
	`

	var sum int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&sum); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to sum completed quantity: %w", err)
	}

	span.SetAttributes(attribute.Int("sum", sum))
	span.SetStatus(codes.Ok, "")
	return sum, nil
}

// GetBySessionID retrieves an order by its payment session ID
func (r *PostgresOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_by_session_id")
	defer span.End()

	span.SetAttributes(attribute.String("stripe_session_id", sessionID))

	query := `
		SELECT
			id, event_id, customer_email, customer_name, quantity,
			status, amount_total, stripe_session_id, created_at
		FROM orders
		WHERE stripe_session_id = $1
	`

	order, err := scanOrderRow(r.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrOrderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// ListByEvent retrieves orders for an event, newest first
func (r *PostgresOrderRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Order, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.list_by_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE event_id = $1", eventID).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT
			id, event_id, customer_email, customer_name, quantity,
			status, amount_total, stripe_session_id, created_at
		FROM orders
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(orders)))
	span.SetStatus(codes.Ok, "")
	return orders, total, nil
}

// SalesSummary aggregates completed order counts and revenue for an event
func (r *PostgresOrderRepository) SalesSummary(ctx context.Context, eventID string) (*dto.SalesSummaryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.sales_summary")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(amount_total), 0)
		FROM orders
		WHERE event_id = $1 AND status = 'completed'
	`

	summary := &dto.SalesSummaryResponse{EventID: eventID}
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&summary.CompletedOrders,
		&summary.TicketsSold,
		&summary.GrossRevenue,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return summary, nil
}

// scanOrderRow scans a row into an Order struct
func scanOrderRow(row pgx.Row) (*domain.Order, error) {
	order := &domain.Order{}
	var status string

	err := row.Scan(
		&order.ID,
		&order.EventID,
		&order.CustomerEmail,
		&order.CustomerName,
		&order.Quantity,
		&status,
		&order.AmountTotal,
		&order.StripeSessionID,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	return order, nil
}

// Ensure PostgresOrderRepository implements OrderRepository
var _ OrderRepository = (*PostgresOrderRepository)(nil)
