package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisInventoryCache_GetRemaining_Hit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisInventoryCache(client, 10*time.Second)

	mock.ExpectGet("tickets:remaining:evt-1").SetVal(`{"remaining":42,"sold_out":false}`)

	remaining, soldOut, ok, err := cache.GetRemaining(context.Background(), "evt-1")

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if remaining != 42 || soldOut {
		t.Errorf("Expected 42/false, got %d/%v", remaining, soldOut)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet redis expectations: %v", err)
	}
}

func TestRedisInventoryCache_GetRemaining_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisInventoryCache(client, 10*time.Second)

	mock.ExpectGet("tickets:remaining:evt-1").RedisNil()

	_, _, ok, err := cache.GetRemaining(context.Background(), "evt-1")

	if err != nil {
		t.Fatalf("Miss must not error: %v", err)
	}
	if ok {
		t.Error("Expected cache miss")
	}
}

func TestRedisInventoryCache_GetRemaining_CorruptEntryIsMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisInventoryCache(client, 10*time.Second)

	mock.ExpectGet("tickets:remaining:evt-1").SetVal("{not json")

	_, _, ok, err := cache.GetRemaining(context.Background(), "evt-1")

	if err != nil {
		t.Fatalf("Corrupt entry must degrade to a miss, got error: %v", err)
	}
	if ok {
		t.Error("Expected corrupt entry to read as a miss")
	}
}

func TestRedisInventoryCache_GetRemaining_Error(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisInventoryCache(client, 10*time.Second)

	mock.ExpectGet("tickets:remaining:evt-1").SetErr(errors.New("connection refused"))

	_, _, _, err := cache.GetRemaining(context.Background(), "evt-1")

	if err == nil {
		t.Error("Expected error to propagate")
	}
}

func TestRedisInventoryCache_SetRemaining(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisInventoryCache(client, 10*time.Second)

	mock.ExpectSet("tickets:remaining:evt-1", `{"remaining":0,"sold_out":true}`, 10*time.Second).SetVal("OK")

	if err := cache.SetRemaining(context.Background(), "evt-1", 0, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet redis expectations: %v", err)
	}
}

func TestRedisInventoryCache_Invalidate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisInventoryCache(client, 10*time.Second)

	mock.ExpectDel("tickets:remaining:evt-1").SetVal(1)

	if err := cache.Invalidate(context.Background(), "evt-1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet redis expectations: %v", err)
	}
}
