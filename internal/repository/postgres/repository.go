package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventsync/notification-service/internal/domain"
)

// notificationRecord is the gorm model backing the ledger table. The
// unique index on (event_id, channel_kind) is what the conditional
// upsert conflicts against.
type notificationRecord struct {
	ID            string    `gorm:"primaryKey"`
	EventID       string    `gorm:"uniqueIndex:idx_notifications_event_channel;not null"`
	ChannelKind   string    `gorm:"uniqueIndex:idx_notifications_event_channel;not null"`
	ScheduledTime time.Time `gorm:"not null"`
	Sent          bool      `gorm:"not null;default:false"`
	SentAt        *time.Time
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (notificationRecord) TableName() string {
	return "notification_records"
}

// eventRow is the read model for the window scan, one row per event
// with the owner's webhook joined in.
type eventRow struct {
	ID               string
	Title            string
	Description      *string
	Location         *string
	StartTime        time.Time
	EndTime          time.Time
	DiscordChannelID *string
	WebhookURL       *string
}

// Repository implements repository.Store on Postgres
type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRepository creates a new Postgres-backed store
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		db:  client.DB(),
		log: log,
	}
}

// ListUpcoming returns events starting within [from, to], inclusive on
// both ends, with each owner's webhook URL resolved in the same query.
func (r *Repository) ListUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	var rows []eventRow

	err := r.db.WithContext(ctx).
		Table("events").
		Select(`events.id, events.title, events.description, events.location,
			events.start_time, events.end_time, events.discord_channel_id,
			user_preferences.discord_webhook_url AS webhook_url`).
		Joins("LEFT JOIN user_preferences ON user_preferences.user_id = events.created_by").
		Where("events.start_time >= ? AND events.start_time <= ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming events: %w", err)
	}

	events := make([]*domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, &domain.Event{
			ID:               row.ID,
			Title:            row.Title,
			Description:      deref(row.Description),
			Location:         deref(row.Location),
			StartTime:        row.StartTime,
			EndTime:          row.EndTime,
			DiscordChannelID: deref(row.DiscordChannelID),
			WebhookURL:       deref(row.WebhookURL),
		})
	}

	return events, nil
}

// HasSucceeded reports whether a sent=true record exists for the key.
func (r *Repository) HasSucceeded(ctx context.Context, eventID string, kind domain.ChannelKind) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&notificationRecord{}).
		Where("event_id = ? AND channel_kind = ? AND sent = ?", eventID, string(kind), true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up notification record: %w", err)
	}

	return count > 0, nil
}

// RecordOutcome upserts the outcome for (eventID, kind) in one statement.
// The DO UPDATE clause is guarded on sent=false, so a record that already
// holds a confirmed delivery is never overwritten, even under concurrent
// dispatcher ticks.
func (r *Repository) RecordOutcome(ctx context.Context, eventID string, kind domain.ChannelKind, scheduledTime time.Time, outcome domain.Outcome) error {
	record := notificationRecord{
		ID:            uuid.NewString(),
		EventID:       eventID,
		ChannelKind:   string(kind),
		ScheduledTime: scheduledTime,
		Sent:          outcome.Sent,
		ErrorMessage:  outcome.ErrorMessage,
	}
	if outcome.Sent {
		sentAt := outcome.SentAt
		record.SentAt = &sentAt
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "channel_kind"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"scheduled_time": record.ScheduledTime,
				"sent":           record.Sent,
				"sent_at":        record.SentAt,
				"error_message":  record.ErrorMessage,
				"updated_at":     time.Now(),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{
					Column: clause.Column{Table: "notification_records", Name: "sent"},
					Value:  false,
				},
			}},
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to record notification outcome: %w", err)
	}

	return nil
}

// InitSchema creates the ledger table if it does not exist. The events
// and user_preferences tables belong to the calendar application and are
// never migrated here.
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&notificationRecord{}); err != nil {
		return fmt.Errorf("failed to migrate notification_records: %w", err)
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the repository and releases resources
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
