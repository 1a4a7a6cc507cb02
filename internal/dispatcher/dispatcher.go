package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eventsync/notification-service/internal/discord"
	"github.com/eventsync/notification-service/internal/domain"
	"github.com/eventsync/notification-service/internal/repository"
)

// Status classifies the outcome of one candidate within a tick.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result is the per-event outcome of a tick.
type Result struct {
	EventID string
	Status  Status
	Error   string
}

// Report aggregates one tick's outcomes.
type Report struct {
	Processed int
	Results   []Result
}

// Config carries the orchestration knobs; all values come from explicit
// configuration, never ambient process state.
type Config struct {
	Lookahead       time.Duration
	Workers         int
	DeliveryTimeout time.Duration
	StoreTimeout    time.Duration
}

// Orchestrator runs one dispatch tick: scan the window, filter through
// the ledger, deliver, record. It holds no state between ticks; the
// ledger's conditional upsert is the sole guard against overlapping
// invocations double-sending.
type Orchestrator struct {
	source    repository.EventSource
	ledger    repository.NotificationLedger
	deliverer Deliverer
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

// NewOrchestrator creates a new dispatch orchestrator
func NewOrchestrator(source repository.EventSource, ledger repository.NotificationLedger, deliverer Deliverer, cfg Config, log *zap.Logger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Orchestrator{
		source:    source,
		ledger:    ledger,
		deliverer: deliverer,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// RunTick scans for events starting within the lookahead window and
// dispatches a reminder for each candidate. Individual candidate failures
// never abort the batch; only a failed scan fails the tick.
func (o *Orchestrator) RunTick(ctx context.Context) (*Report, error) {
	now := o.now()
	windowEnd := now.Add(o.cfg.Lookahead)

	scanCtx, cancel := context.WithTimeout(ctx, o.cfg.StoreTimeout)
	defer cancel()

	events, err := o.source.ListUpcoming(scanCtx, now, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to scan upcoming events: %w", err)
	}

	results := make([]Result, len(events))
	if len(events) > 0 {
		jobs := make(chan int)
		var wg sync.WaitGroup

		workers := o.cfg.Workers
		if workers > len(events) {
			workers = len(events)
		}

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for idx := range jobs {
					results[idx] = o.processCandidate(ctx, events[idx])
				}
			}()
		}

		for i := range events {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	report := &Report{
		Processed: len(events),
		Results:   results,
	}

	var sent, failed, skipped, errored int
	for _, r := range results {
		switch r.Status {
		case StatusSent:
			sent++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		case StatusError:
			errored++
		}
	}
	o.log.Info("Dispatch tick completed",
		zap.Int("processed", report.Processed),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Int("errors", errored))

	return report, nil
}

// processCandidate runs the per-event state machine: already-sent skip,
// unconfigured skip, attempt, record. A panic anywhere in the chain is
// converted into an "error" result so one candidate cannot take down the
// batch.
func (o *Orchestrator) processCandidate(ctx context.Context, event *domain.Event) (result Result) {
	result = Result{EventID: event.ID}

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Recovered from panic while dispatching reminder",
				zap.String("event_id", event.ID),
				zap.Any("panic", r))
			result.Status = StatusError
			result.Error = fmt.Sprintf("unexpected panic: %v", r)
		}
	}()

	alreadySent, err := o.hasSucceeded(ctx, event.ID)
	if err != nil {
		// Without a trustworthy sent flag an attempt could double-send,
		// so the candidate waits for the next tick.
		o.log.Error("Ledger lookup failed",
			zap.String("event_id", event.ID),
			zap.Error(err))
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}
	if alreadySent {
		o.log.Debug("Reminder already sent, skipping",
			zap.String("event_id", event.ID))
		result.Status = StatusSkipped
		return result
	}

	if !event.Dispatchable() {
		// Nothing to retry and nothing to record: the event becomes
		// dispatchable once its owner configures a webhook.
		o.log.Info("No webhook configured for event owner, skipping",
			zap.String("event_id", event.ID))
		result.Status = StatusSkipped
		return result
	}

	deliverErr := o.deliver(ctx, event)
	if deliverErr != nil {
		o.log.Warn("Reminder delivery failed",
			zap.String("event_id", event.ID),
			zap.Error(deliverErr))

		if err := o.recordOutcome(ctx, event, domain.FailureOutcome(deliverErr.Error())); err != nil {
			o.log.Error("Failed to record delivery failure",
				zap.String("event_id", event.ID),
				zap.Error(err))
			result.Status = StatusError
			result.Error = err.Error()
			return result
		}

		result.Status = StatusFailed
		result.Error = deliverErr.Error()
		return result
	}

	if err := o.recordOutcome(ctx, event, domain.SuccessOutcome(o.now())); err != nil {
		// Delivery went out but the ledger holds no sent=true record.
		// Report it as unknown for this tick; the upsert guard makes the
		// next tick's re-attempt safe to record.
		o.log.Error("Delivered but failed to record outcome",
			zap.String("event_id", event.ID),
			zap.Error(err))
		result.Status = StatusError
		result.Error = fmt.Sprintf("delivered but outcome not recorded: %s", err.Error())
		return result
	}

	o.log.Info("Reminder sent",
		zap.String("event_id", event.ID),
		zap.String("title", event.Title))
	result.Status = StatusSent
	return result
}

func (o *Orchestrator) hasSucceeded(ctx context.Context, eventID string) (bool, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, o.cfg.StoreTimeout)
	defer cancel()

	return o.ledger.HasSucceeded(lookupCtx, eventID, domain.ChannelDiscord)
}

func (o *Orchestrator) deliver(ctx context.Context, event *domain.Event) error {
	deliverCtx, cancel := context.WithTimeout(ctx, o.cfg.DeliveryTimeout)
	defer cancel()

	reminder := discord.NewReminder(event)
	target := discord.Target{
		WebhookURL: event.WebhookURL,
		ChannelID:  event.DiscordChannelID,
	}

	return o.deliverer.Deliver(deliverCtx, reminder, target)
}

func (o *Orchestrator) recordOutcome(ctx context.Context, event *domain.Event, outcome domain.Outcome) error {
	writeCtx, cancel := context.WithTimeout(ctx, o.cfg.StoreTimeout)
	defer cancel()

	return o.ledger.RecordOutcome(writeCtx, event.ID, domain.ChannelDiscord, event.StartTime, outcome)
}
