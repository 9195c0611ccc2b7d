package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/traininginparks/trainbot/internal/models"
)

// Fetcher pulls the next batch of upcoming events from the source calendar.
type Fetcher interface {
	FetchUpcoming(ctx context.Context, limit int) ([]*models.Event, error)
}

// Syncer mirrors the source calendar into the event store on a fixed
// wall-clock period, independently of user interaction.
type Syncer struct {
	logger  *slog.Logger
	fetcher Fetcher
	repo    models.EventRepo
	period  time.Duration
	batch   int
}

func New(logger *slog.Logger, fetcher Fetcher, repo models.EventRepo, period time.Duration, batch int) *Syncer {
	return &Syncer{
		logger:  logger,
		fetcher: fetcher,
		repo:    repo,
		period:  period,
		batch:   batch,
	}
}

// Run executes sync cycles until ctx is cancelled. A failed cycle is logged
// and the next one proceeds unconditionally.
func (s *Syncer) Run(ctx context.Context) {
	start := time.Now()
	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("Sync cycle failed", "error", err)
		}

		timer := time.NewTimer(nextWait(time.Since(start), s.period))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce performs a single fetch-then-upsert cycle.
func (s *Syncer) RunOnce(ctx context.Context) error {
	events, err := s.fetcher.FetchUpcoming(ctx, s.batch)
	if err != nil {
		return fmt.Errorf("fetch upcoming events: %w", err)
	}

	for _, event := range events {
		if err := s.repo.UpsertEvent(ctx, event); err != nil {
			return fmt.Errorf("upsert event %s: %w", event.ID, err)
		}
	}

	s.logger.Debug("Sync cycle completed", "events", len(events))
	return nil
}

// nextWait keeps cycle starts phase-aligned to period boundaries: however
// long a cycle took, the next one begins at the following boundary.
func nextWait(elapsed, period time.Duration) time.Duration {
	return period - elapsed%period
}
