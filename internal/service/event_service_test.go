package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Tekthree/ticket-shameless-sub001/internal/domain"
	"github.com/Tekthree/ticket-shameless-sub001/internal/dto"
)

func TestEventService_CreateEvent(t *testing.T) {
	eventRepo := new(MockEventRepository)
	service := NewEventService(eventRepo, nil)

	eventRepo.On("Create", mock.Anything, mock.MatchedBy(func(event *domain.Event) bool {
		return event.TicketsRemaining == 200 && !event.SoldOut && event.ID != ""
	})).Return(nil)

	event, err := service.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:        "Warehouse Night",
		Venue:        "Substation",
		Date:         time.Now().Add(30 * 24 * time.Hour),
		Price:        35.00,
		TicketsTotal: 200,
	})

	assert.NoError(t, err)
	assert.Equal(t, 200, event.TicketsRemaining)
	assert.False(t, event.SoldOut)
}

func TestEventService_CreateEvent_ZeroTicketsIsSoldOut(t *testing.T) {
	eventRepo := new(MockEventRepository)
	service := NewEventService(eventRepo, nil)

	eventRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	event, err := service.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title: "Unannounced",
		Date:  time.Now(),
	})

	assert.NoError(t, err)
	assert.True(t, event.SoldOut)
}

func TestEventService_UpdateEvent_ShrinkTotalClampsRemaining(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	service := NewEventService(eventRepo, cache)

	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		Title:            "Warehouse Night",
		TicketsTotal:     100,
		TicketsRemaining: 10,
	}, nil)
	eventRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", mock.Anything, "evt-1").Return(nil)

	// 90 sold, total shrunk to 80: remaining clamps to 0 and sold_out flips
	newTotal := 80
	event, err := service.UpdateEvent(context.Background(), "evt-1", &dto.UpdateEventRequest{
		TicketsTotal: &newTotal,
	})

	assert.NoError(t, err)
	assert.Equal(t, 80, event.TicketsTotal)
	assert.Equal(t, 0, event.TicketsRemaining)
	assert.True(t, event.SoldOut)
	cache.AssertExpectations(t)
}

func TestEventService_UpdateEvent_GrowTotalFreesTickets(t *testing.T) {
	eventRepo := new(MockEventRepository)
	service := NewEventService(eventRepo, nil)

	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		Title:            "Warehouse Night",
		TicketsTotal:     100,
		TicketsRemaining: 0,
		SoldOut:          true,
	}, nil)
	eventRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	newTotal := 120
	event, err := service.UpdateEvent(context.Background(), "evt-1", &dto.UpdateEventRequest{
		TicketsTotal: &newTotal,
	})

	assert.NoError(t, err)
	assert.Equal(t, 20, event.TicketsRemaining)
	assert.False(t, event.SoldOut)
}

func TestEventService_TicketsRemaining_CacheHit(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	service := NewEventService(eventRepo, cache)

	cache.On("GetRemaining", mock.Anything, "evt-1").Return(42, false, true, nil)

	remaining, soldOut, err := service.TicketsRemaining(context.Background(), "evt-1")

	assert.NoError(t, err)
	assert.Equal(t, 42, remaining)
	assert.False(t, soldOut)
	eventRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestEventService_TicketsRemaining_CacheMissFillsCache(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	service := NewEventService(eventRepo, cache)

	cache.On("GetRemaining", mock.Anything, "evt-1").Return(0, false, false, nil)
	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		TicketsRemaining: 17,
	}, nil)
	cache.On("SetRemaining", mock.Anything, "evt-1", 17, false).Return(nil)

	remaining, soldOut, err := service.TicketsRemaining(context.Background(), "evt-1")

	assert.NoError(t, err)
	assert.Equal(t, 17, remaining)
	assert.False(t, soldOut)
	cache.AssertExpectations(t)
}

func TestEventService_TicketsRemaining_CacheFailureFallsThrough(t *testing.T) {
	eventRepo := new(MockEventRepository)
	cache := new(MockInventoryCache)
	service := NewEventService(eventRepo, cache)

	cache.On("GetRemaining", mock.Anything, "evt-1").Return(0, false, false, errors.New("redis down"))
	eventRepo.On("GetByID", mock.Anything, "evt-1").Return(&domain.Event{
		ID:               "evt-1",
		TicketsRemaining: 5,
	}, nil)
	cache.On("SetRemaining", mock.Anything, "evt-1", 5, false).Return(errors.New("redis down"))

	remaining, _, err := service.TicketsRemaining(context.Background(), "evt-1")

	assert.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestEventService_TicketsRemaining_EventNotFound(t *testing.T) {
	eventRepo := new(MockEventRepository)
	service := NewEventService(eventRepo, nil)

	eventRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrEventNotFound)

	_, _, err := service.TicketsRemaining(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
