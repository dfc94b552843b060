// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/domain/shared"
	"github.com/pantrypairing/server/internal/ports/outbound"
)

// MockGenerativeModel is a mock implementation of outbound.GenerativeModel
type MockGenerativeModel struct {
	mock.Mock
}

// NewMockGenerativeModel creates a new mock model
func NewMockGenerativeModel() *MockGenerativeModel {
	return &MockGenerativeModel{}
}

func (m *MockGenerativeModel) Generate(ctx context.Context, req outbound.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGenerativeModel) Name() string {
	return "mock/test-model"
}

// MockReceiptOCR is a mock implementation of outbound.ReceiptOCR
type MockReceiptOCR struct {
	mock.Mock
}

// NewMockReceiptOCR creates a new mock OCR collaborator
func NewMockReceiptOCR() *MockReceiptOCR {
	return &MockReceiptOCR{}
}

func (m *MockReceiptOCR) ExtractText(ctx context.Context, img outbound.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// MockCacheRepository is a mock implementation of outbound.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockAIGateway is a mock implementation of inbound.AIGateway
type MockAIGateway struct {
	mock.Mock
}

// NewMockAIGateway creates a new mock gateway
func NewMockAIGateway() *MockAIGateway {
	return &MockAIGateway{}
}

func (m *MockAIGateway) AnalyzeImage(ctx context.Context, img outbound.Image) ([]pantry.IngredientDetail, error) {
	args := m.Called(ctx, img)
	items, _ := args.Get(0).([]pantry.IngredientDetail)
	return items, args.Error(1)
}

func (m *MockAIGateway) RecommendRecipes(ctx context.Context, ingredients []pantry.IngredientDetail) (*recipe.RecommendationResponse, error) {
	args := m.Called(ctx, ingredients)
	resp, _ := args.Get(0).(*recipe.RecommendationResponse)
	return resp, args.Error(1)
}

func (m *MockAIGateway) RecommendPairings(ctx context.Context, alcohol string, availableIngredients []string) (*recipe.PairingResponse, error) {
	args := m.Called(ctx, alcohol, availableIngredients)
	resp, _ := args.Get(0).(*recipe.PairingResponse)
	return resp, args.Error(1)
}

// FakeTimer satisfies backoff.Timer. It fires immediately and records every
// requested delay.
type FakeTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	c      chan time.Time
}

// NewFakeTimer creates a timer that never sleeps.
func NewFakeTimer() *FakeTimer {
	return &FakeTimer{c: make(chan time.Time, 1)}
}

func (t *FakeTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.delays = append(t.delays, d)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *FakeTimer) Stop() {}

func (t *FakeTimer) C() <-chan time.Time {
	return t.c
}

// Delays returns the delays requested so far.
func (t *FakeTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}

// EventRecorder collects published domain events.
type EventRecorder struct {
	mu     sync.Mutex
	events []string
}

// Publish records the event name.
func (r *EventRecorder) Publish(event shared.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.EventName())
}

// Names returns the recorded event names in order.
func (r *EventRecorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
