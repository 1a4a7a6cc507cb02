package repository

import (
	"context"
	"time"

	"github.com/eventsync/notification-service/internal/domain"
)

// EventSource reads candidate events from the external event store.
type EventSource interface {
	// ListUpcoming returns events whose start time lies in the closed
	// interval [from, to], each with its owner's webhook URL resolved.
	// An empty window yields an empty slice, not an error.
	ListUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Event, error)
}

// NotificationLedger is the durable idempotency and audit log of
// delivery attempts.
type NotificationLedger interface {
	// HasSucceeded reports whether a confirmed delivery is already
	// recorded for the key. It must never report true for a key that
	// has no sent record.
	HasSucceeded(ctx context.Context, eventID string, kind domain.ChannelKind) (bool, error)

	// RecordOutcome upserts the attempt outcome for the key in a single
	// atomic statement. A key whose record already has sent=true is
	// never overwritten.
	RecordOutcome(ctx context.Context, eventID string, kind domain.ChannelKind, scheduledTime time.Time, outcome domain.Outcome) error
}

// Store combines the read and write collaborator interfaces with
// lifecycle operations, matching what one backing database provides.
type Store interface {
	EventSource
	NotificationLedger

	// InitSchema creates the ledger table if it does not exist.
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive.
	Ping(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
