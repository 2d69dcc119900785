package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
)

func newTestOrder(eventID, sessionID string, quantity int) *domain.Order {
	var eid *string
	if eventID != "" {
		eid = &eventID
	}
	return &domain.Order{
		ID:              uuid.New().String(),
		EventID:         eid,
		CustomerEmail:   "test-" + uuid.New().String()[:8] + "@example.com",
		CustomerName:    "Test Fan",
		Quantity:        quantity,
		Status:          domain.OrderStatusCompleted,
		AmountTotal:     float64(quantity) * 35.00,
		StripeSessionID: sessionID,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgresOrderRepository_AppendCompleted_Duplicate(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	eventRepo := NewPostgresEventRepository(db.Pool())
	orderRepo := NewPostgresOrderRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(100, 100)
	if err := eventRepo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	sessionID := "cs_test_" + uuid.New().String()
	first := newTestOrder(event.ID, sessionID, 3)
	if err := orderRepo.AppendCompleted(ctx, first); err != nil {
		t.Fatalf("First append failed: %v", err)
	}

	// Same session redelivered with a different order ID: absorbed, no error
	second := newTestOrder(event.ID, sessionID, 3)
	if err := orderRepo.AppendCompleted(ctx, second); err != nil {
		t.Fatalf("Duplicate append should be absorbed, got: %v", err)
	}

	sum, err := orderRepo.SumCompletedQuantity(ctx, event.ID)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sum != 3 {
		t.Errorf("Expected sum 3 after duplicate absorption, got %d", sum)
	}
}

func TestPostgresOrderRepository_SumCompletedQuantity(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	eventRepo := NewPostgresEventRepository(db.Pool())
	orderRepo := NewPostgresOrderRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(50, 50)
	if err := eventRepo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	// No orders yet
	sum, err := orderRepo.SumCompletedQuantity(ctx, event.ID)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sum != 0 {
		t.Errorf("Expected sum 0 with no orders, got %d", sum)
	}

	for _, q := range []int{3, 2} {
		order := newTestOrder(event.ID, "cs_test_"+uuid.New().String(), q)
		if err := orderRepo.AppendCompleted(ctx, order); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	// Pending orders must not count
	pending := newTestOrder(event.ID, "cs_test_"+uuid.New().String(), 4)
	pending.Status = domain.OrderStatusPending
	if err := orderRepo.AppendCompleted(ctx, pending); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	sum, err = orderRepo.SumCompletedQuantity(ctx, event.ID)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if sum != 5 {
		t.Errorf("Expected sum 5, got %d", sum)
	}
}

func TestPostgresOrderRepository_GetBySessionID(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	eventRepo := NewPostgresEventRepository(db.Pool())
	orderRepo := NewPostgresOrderRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(20, 20)
	if err := eventRepo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	sessionID := "cs_test_" + uuid.New().String()
	order := newTestOrder(event.ID, sessionID, 2)
	if err := orderRepo.AppendCompleted(ctx, order); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	found, err := orderRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found.ID != order.ID {
		t.Errorf("Expected order %s, got %s", order.ID, found.ID)
	}

	_, err = orderRepo.GetBySessionID(ctx, "cs_test_missing_"+uuid.New().String())
	if !domain.IsNotFoundError(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestPostgresOrderRepository_SalesSummary(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	eventRepo := NewPostgresEventRepository(db.Pool())
	orderRepo := NewPostgresOrderRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(100, 100)
	if err := eventRepo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	for _, q := range []int{2, 5} {
		order := newTestOrder(event.ID, "cs_test_"+uuid.New().String(), q)
		if err := orderRepo.AppendCompleted(ctx, order); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	summary, err := orderRepo.SalesSummary(ctx, event.ID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.CompletedOrders != 2 {
		t.Errorf("Expected 2 completed orders, got %d", summary.CompletedOrders)
	}
	if summary.TicketsSold != 7 {
		t.Errorf("Expected 7 tickets sold, got %d", summary.TicketsSold)
	}
	if summary.GrossRevenue != 245.00 {
		t.Errorf("Expected revenue 245.00, got %f", summary.GrossRevenue)
	}
}
