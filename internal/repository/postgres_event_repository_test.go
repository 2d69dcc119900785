package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func setupTestDB(t *testing.T) *database.PostgresDB {
	ctx := context.Background()

	cfg := &database.PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            5432,
		User:            getEnv("POSTGRES_USER", "postgres"),
		Password:        getEnv("POSTGRES_PASSWORD", ""),
		Database:        getEnv("POSTGRES_DB", "ticket_shameless_test"),
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	}

	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	_, err = db.Pool().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			venue VARCHAR(255) NOT NULL DEFAULT '',
			date TIMESTAMP WITH TIME ZONE NOT NULL,
			price DECIMAL(12,2) NOT NULL DEFAULT 0,
			tickets_total INTEGER NOT NULL DEFAULT 0 CHECK (tickets_total >= 0),
			tickets_remaining INTEGER NOT NULL DEFAULT 0 CHECK (tickets_remaining >= 0),
			sold_out BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}

	_, err = db.Pool().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(36) PRIMARY KEY,
			event_id VARCHAR(36) REFERENCES events(id) ON DELETE SET NULL,
			customer_email VARCHAR(255) NOT NULL DEFAULT '',
			customer_name VARCHAR(255) NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			amount_total DECIMAL(12,2) NOT NULL DEFAULT 0,
			stripe_session_id VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_orders_event_status ON orders (event_id, status)
	`)
	if err != nil {
		t.Fatalf("Failed to create orders table: %v", err)
	}

	return db
}

func cleanupTestData(t *testing.T, db *database.PostgresDB) {
	ctx := context.Background()
	if _, err := db.Pool().Exec(ctx, "DELETE FROM orders WHERE customer_email LIKE 'test-%'"); err != nil {
		t.Logf("Warning: failed to cleanup orders: %v", err)
	}
	if _, err := db.Pool().Exec(ctx, "DELETE FROM events WHERE title LIKE 'test-%'"); err != nil {
		t.Logf("Warning: failed to cleanup events: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newTestEvent(total, remaining int) *domain.Event {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Event{
		ID:               uuid.New().String(),
		Title:            "test-" + uuid.New().String()[:8],
		Venue:            "Substation",
		Date:             now.Add(30 * 24 * time.Hour),
		Price:            35.00,
		TicketsTotal:     total,
		TicketsRemaining: remaining,
		SoldOut:          remaining <= 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestPostgresEventRepository_CreateAndGet(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresEventRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(100, 100)
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	found, err := repo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("Failed to get event: %v", err)
	}
	if found.Title != event.Title {
		t.Errorf("Expected title %q, got %q", event.Title, found.Title)
	}
	if found.TicketsRemaining != 100 {
		t.Errorf("Expected 100 remaining, got %d", found.TicketsRemaining)
	}
}

func TestPostgresEventRepository_GetByID_NotFound(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	repo := NewPostgresEventRepository(db.Pool())

	_, err := repo.GetByID(context.Background(), uuid.New().String())
	if !domain.IsNotFoundError(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestPostgresEventRepository_DecrementRemaining(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresEventRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(10, 10)
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	if err := repo.DecrementRemaining(ctx, event.ID, 4); err != nil {
		t.Fatalf("Decrement failed: %v", err)
	}

	found, _ := repo.GetByID(ctx, event.ID)
	if found.TicketsRemaining != 6 {
		t.Errorf("Expected 6 remaining, got %d", found.TicketsRemaining)
	}
	if found.SoldOut {
		t.Error("Event should not be sold out")
	}
}

func TestPostgresEventRepository_DecrementRemaining_ExactlyToZero(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresEventRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(5, 5)
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	if err := repo.DecrementRemaining(ctx, event.ID, 5); err != nil {
		t.Fatalf("Decrement failed: %v", err)
	}

	found, _ := repo.GetByID(ctx, event.ID)
	if found.TicketsRemaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", found.TicketsRemaining)
	}
	if !found.SoldOut {
		t.Error("Event should be sold out after taking the last tickets")
	}
}

func TestPostgresEventRepository_DecrementRemaining_Insufficient(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresEventRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(10, 3)
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	err := repo.DecrementRemaining(ctx, event.ID, 5)
	if !domain.IsInventoryError(err) {
		t.Fatalf("Expected insufficient-inventory error, got %v", err)
	}

	// No mutation on rejection
	found, _ := repo.GetByID(ctx, event.ID)
	if found.TicketsRemaining != 3 {
		t.Errorf("Expected 3 remaining after rejected decrement, got %d", found.TicketsRemaining)
	}
}

func TestPostgresEventRepository_DecrementRemaining_EventNotFound(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	repo := NewPostgresEventRepository(db.Pool())

	err := repo.DecrementRemaining(context.Background(), uuid.New().String(), 1)
	if !domain.IsNotFoundError(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestPostgresEventRepository_SetRemaining(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresEventRepository(db.Pool())
	ctx := context.Background()

	event := newTestEvent(50, 50)
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	if err := repo.SetRemaining(ctx, event.ID, 0, true); err != nil {
		t.Fatalf("SetRemaining failed: %v", err)
	}

	found, _ := repo.GetByID(ctx, event.ID)
	if found.TicketsRemaining != 0 || !found.SoldOut {
		t.Errorf("Expected 0/sold-out, got %d/%v", found.TicketsRemaining, found.SoldOut)
	}
}
