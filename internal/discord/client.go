package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultAPIBaseURL = "https://discord.com/api/v10"

// maxDiagnosticBytes caps how much of an error response body is kept as
// diagnostic text.
const maxDiagnosticBytes = 2048

// Target identifies where a reminder is delivered: the owner's webhook
// endpoint and, optionally, a channel for the bot-credentialed post.
type Target struct {
	WebhookURL string
	ChannelID  string
}

// Client delivers reminders to Discord. The channel post is an optional
// capability: without a bot token the client only ever calls the webhook.
type Client struct {
	httpClient *http.Client
	botToken   string
	apiBaseURL string
	log        *zap.Logger
}

// NewClient creates a Discord delivery client. An empty botToken disables
// the secondary channel post.
func NewClient(botToken string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		botToken:   botToken,
		apiBaseURL: defaultAPIBaseURL,
		log:        log,
	}
}

// Deliver performs exactly one webhook call for the reminder. The verdict
// depends only on that call: any transport error or non-2xx response is
// returned as an error carrying the diagnostic text. A configured channel
// post runs after a successful webhook call, best-effort only.
func (c *Client) Deliver(ctx context.Context, reminder *Reminder, target Target) error {
	if err := c.postWebhook(ctx, reminder, target.WebhookURL); err != nil {
		return err
	}

	if c.botToken != "" && target.ChannelID != "" {
		if err := c.postChannelMessage(ctx, reminder, target.ChannelID); err != nil {
			c.log.Warn("Failed to post to Discord channel",
				zap.String("channel_id", target.ChannelID),
				zap.Error(err))
		}
	}

	return nil
}

func (c *Client) postWebhook(ctx context.Context, reminder *Reminder, webhookURL string) error {
	body, err := json.Marshal(reminder.Body)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("discord webhook returned %s: %s", resp.Status, readDiagnostic(resp.Body))
	}

	return nil
}

func (c *Client) postChannelMessage(ctx context.Context, reminder *Reminder, channelID string) error {
	body, err := json.Marshal(map[string]string{"content": reminder.ChannelContent})
	if err != nil {
		return fmt.Errorf("failed to marshal channel message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.apiBaseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build channel request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("channel request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("discord API returned %s: %s", resp.Status, readDiagnostic(resp.Body))
	}

	return nil
}

func readDiagnostic(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxDiagnosticBytes))
	if err != nil || len(raw) == 0 {
		return "<no response body>"
	}
	return string(raw)
}
