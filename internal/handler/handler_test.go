package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/eventsync/notification-service/internal/dispatcher"
	"github.com/eventsync/notification-service/internal/dto"
)

// MockTickRunner is a mock implementation of TickRunner
type MockTickRunner struct {
	mock.Mock
}

func (m *MockTickRunner) RunTick(ctx context.Context) (*dispatcher.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatcher.Report), args.Error(1)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestHandler_HealthCheck_OK(t *testing.T) {
	runner := new(MockTickRunner)
	store := new(MockPinger)
	store.On("Ping", mock.Anything).Return(nil)

	handler := NewHandler(runner, store, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_HealthCheck_Unhealthy(t *testing.T) {
	runner := new(MockTickRunner)
	store := new(MockPinger)
	store.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	handler := NewHandler(runner, store, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_Dispatch_CompletedTick(t *testing.T) {
	runner := new(MockTickRunner)
	store := new(MockPinger)

	runner.On("RunTick", mock.Anything).Return(&dispatcher.Report{
		Processed: 3,
		Results: []dispatcher.Result{
			{EventID: "evt-1", Status: dispatcher.StatusSent},
			{EventID: "evt-2", Status: dispatcher.StatusFailed, Error: "discord webhook returned 500"},
			{EventID: "evt-3", Status: dispatcher.StatusSkipped},
		},
	}, nil)

	handler := NewHandler(runner, store, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/dispatch", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// Individual candidate failures never fail the tick.
	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.DispatchResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, 3, response.Processed)
	assert.Equal(t, "evt-2", response.Results[1].EventID)
	assert.Equal(t, "failed", response.Results[1].Status)
	assert.Equal(t, "discord webhook returned 500", response.Results[1].Error)
	assert.Empty(t, response.Results[0].Error)
}

func TestHandler_Dispatch_TickFailure(t *testing.T) {
	runner := new(MockTickRunner)
	store := new(MockPinger)

	runner.On("RunTick", mock.Anything).Return(nil, errors.New("failed to scan upcoming events: query timeout"))

	handler := NewHandler(runner, store, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/dispatch", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "dispatch_failed", response.Error)
	assert.Contains(t, response.Message, "query timeout")
}

func TestHandler_Dispatch_SkippedResultHasNoErrorField(t *testing.T) {
	runner := new(MockTickRunner)
	store := new(MockPinger)

	runner.On("RunTick", mock.Anything).Return(&dispatcher.Report{
		Processed: 1,
		Results:   []dispatcher.Result{{EventID: "evt-1", Status: dispatcher.StatusSkipped}},
	}, nil)

	handler := NewHandler(runner, store, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/dispatch", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"error"`)
}
