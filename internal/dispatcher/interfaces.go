package dispatcher

import (
	"context"

	"github.com/eventsync/notification-service/internal/discord"
)

// Deliverer performs one outbound reminder delivery.
type Deliverer interface {
	Deliver(ctx context.Context, reminder *discord.Reminder, target discord.Target) error
}
