package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/eventsync/notification-service/internal/dispatcher"
)

// TickRunner runs one dispatch tick.
type TickRunner interface {
	RunTick(ctx context.Context) (*dispatcher.Report, error)
}

// Scheduler drives the orchestrator from an in-process cron schedule for
// deployments without an external trigger. Overlapping ticks are safe;
// idempotency comes from the ledger, not from the schedule.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// New creates a scheduler that runs a dispatch tick on the given
// cron schedule (standard 5-field syntax).
func New(orchestrator TickRunner, schedule string, log *zap.Logger) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		report, err := orchestrator.RunTick(context.Background())
		if err != nil {
			log.Error("Scheduled dispatch tick failed", zap.Error(err))
			return
		}
		log.Info("Scheduled dispatch tick finished",
			zap.Int("processed", report.Processed))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register dispatch schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Dispatch schedule started")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Dispatch schedule stopped")
}
