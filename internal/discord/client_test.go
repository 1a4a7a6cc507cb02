package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eventsync/notification-service/internal/domain"
)

func clientEvent() *domain.Event {
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	return &domain.Event{
		ID:               "evt-1",
		Title:            "Standup",
		StartTime:        start,
		EndTime:          start.Add(15 * time.Minute),
		DiscordChannelID: "chan-99",
	}
}

func TestClient_Deliver_Success(t *testing.T) {
	var received Payload
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	client := NewClient("", time.Second, zap.NewNop())
	err := client.Deliver(context.Background(), NewReminder(clientEvent()), Target{WebhookURL: webhook.URL})

	assert.NoError(t, err)
	assert.Len(t, received.Embeds, 1)
	assert.Equal(t, "📅 Event Reminder: Standup", received.Embeds[0].Title)
}

func TestClient_Deliver_NonSuccessStatusIsError(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Unknown Webhook"}`))
	}))
	defer webhook.Close()

	client := NewClient("", time.Second, zap.NewNop())
	err := client.Deliver(context.Background(), NewReminder(clientEvent()), Target{WebhookURL: webhook.URL})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Unknown Webhook")
}

func TestClient_Deliver_TransportErrorIsError(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	webhook.Close()

	client := NewClient("", time.Second, zap.NewNop())
	err := client.Deliver(context.Background(), NewReminder(clientEvent()), Target{WebhookURL: webhook.URL})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "webhook request failed")
}

func TestClient_Deliver_ChannelPostAfterSuccess(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	var channelCalls int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&channelCalls, 1)
		assert.Equal(t, "/channels/chan-99/messages", r.URL.Path)
		assert.Equal(t, "Bot token-123", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["content"], "Standup")
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	client := NewClient("token-123", time.Second, zap.NewNop())
	client.apiBaseURL = api.URL

	err := client.Deliver(context.Background(), NewReminder(clientEvent()), Target{
		WebhookURL: webhook.URL,
		ChannelID:  "chan-99",
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&channelCalls))
}

func TestClient_Deliver_ChannelPostFailureDoesNotDowngrade(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer api.Close()

	client := NewClient("token-123", time.Second, zap.NewNop())
	client.apiBaseURL = api.URL

	err := client.Deliver(context.Background(), NewReminder(clientEvent()), Target{
		WebhookURL: webhook.URL,
		ChannelID:  "chan-99",
	})

	assert.NoError(t, err)
}

func TestClient_Deliver_ChannelPostSkippedWithoutToken(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	var channelCalls int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&channelCalls, 1)
	}))
	defer api.Close()

	client := NewClient("", time.Second, zap.NewNop())
	client.apiBaseURL = api.URL

	err := client.Deliver(context.Background(), NewReminder(clientEvent()), Target{
		WebhookURL: webhook.URL,
		ChannelID:  "chan-99",
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&channelCalls))
}
