package domain

import "time"

// ChannelKind discriminates notification delivery mechanisms.
type ChannelKind string

// ChannelDiscord is the Discord webhook reminder channel.
const ChannelDiscord ChannelKind = "discord"

// NotificationRecord is the durable ledger entry for one delivery key.
// At most one record exists per (EventID, ChannelKind); once Sent is true
// the record is immutable.
type NotificationRecord struct {
	ID            string
	EventID       string
	ChannelKind   ChannelKind
	ScheduledTime time.Time
	Sent          bool
	SentAt        *time.Time
	ErrorMessage  string
}

// Outcome is the result of a single delivery attempt.
type Outcome struct {
	Sent         bool
	SentAt       time.Time
	ErrorMessage string
}

// SuccessOutcome marks a confirmed delivery at the given instant.
func SuccessOutcome(at time.Time) Outcome {
	return Outcome{Sent: true, SentAt: at}
}

// FailureOutcome carries the diagnostic text of a failed attempt.
func FailureOutcome(message string) Outcome {
	return Outcome{Sent: false, ErrorMessage: message}
}
