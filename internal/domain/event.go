package domain

import "time"

// Event is a calendar event as read from the event store. The dispatcher
// never mutates events; they are owned by the calendar application.
type Event struct {
	ID               string
	Title            string
	Description      string
	Location         string
	StartTime        time.Time
	EndTime          time.Time
	DiscordChannelID string

	// WebhookURL is the owner's Discord webhook resolved from user
	// preferences during the scan. Empty means the event is not
	// dispatchable.
	WebhookURL string
}

// Dispatchable reports whether the event has a delivery target configured.
func (e *Event) Dispatchable() bool {
	return e.WebhookURL != ""
}
