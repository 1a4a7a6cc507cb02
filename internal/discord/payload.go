package discord

import (
	"fmt"
	"time"

	"github.com/eventsync/notification-service/internal/domain"
)

const (
	embedColor  = 0x2563eb
	footerText  = "EventSync Notification"
	dateLayout  = "Monday, January 2, 2006"
	clockLayout = "3:04 PM"

	// NoDescriptionPlaceholder is rendered when an event has no
	// description text.
	NoDescriptionPlaceholder = "No description provided"
)

// Payload is the JSON body posted to a Discord webhook.
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

// Embed is a single Discord rich embed.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields"`
	Timestamp   string       `json:"timestamp"`
	Footer      EmbedFooter  `json:"footer"`
}

// EmbedField is a titled value inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is the embed footer line.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Reminder is a fully constructed event reminder: the embed body for the
// webhook call plus the plain-text content for the optional channel post.
type Reminder struct {
	Body           Payload
	ChannelContent string
}

// NewReminder builds the reminder message for an event. The location
// field is only present when the event has a location; a missing
// description renders the placeholder text.
func NewReminder(event *domain.Event) *Reminder {
	description := event.Description
	if description == "" {
		description = NoDescriptionPlaceholder
	}

	fields := []EmbedField{
		{
			Name:   "📆 Date",
			Value:  event.StartTime.Format(dateLayout),
			Inline: false,
		},
		{
			Name:   "🕐 Time",
			Value:  fmt.Sprintf("%s - %s", event.StartTime.Format(clockLayout), event.EndTime.Format(clockLayout)),
			Inline: true,
		},
	}
	if event.Location != "" {
		fields = append(fields, EmbedField{
			Name:   "📍 Location",
			Value:  event.Location,
			Inline: true,
		})
	}

	return &Reminder{
		Body: Payload{
			Embeds: []Embed{{
				Title:       fmt.Sprintf("📅 Event Reminder: %s", event.Title),
				Description: description,
				Color:       embedColor,
				Fields:      fields,
				Timestamp:   event.StartTime.Format(time.RFC3339),
				Footer:      EmbedFooter{Text: footerText},
			}},
		},
		ChannelContent: fmt.Sprintf("**Reminder:** Event %q starts at %s", event.Title, event.StartTime.Format(clockLayout)),
	}
}
