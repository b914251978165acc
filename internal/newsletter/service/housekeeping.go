package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/newsletter/internal/newsletter/metrics"
	"github.com/aussiebroadwan/newsletter/internal/newsletter/store"
)

// HousekeepingService periodically removes subscriptions that were never
// confirmed. Their tokens go with them by cascade.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is 0 or
// negative it defaults to 1 hour. A retention of 0 disables purging.
func NewHousekeepingService(st store.Store, logger *slog.Logger, m *metrics.Metrics, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Metrics:   m,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes pending subscriptions older than the retention window.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	if s.Retention <= 0 {
		return
	}

	cutoff := time.Now().Add(-s.Retention)
	n, err := s.Store.Subscriptions().DeletePendingBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete stale pending subscriptions", slog.Any("error", err))
		return
	}
	s.Metrics.Purged(n)
	s.Logger.Info("housekeeping cleanup completed", slog.Int64("purged_subscriptions", n))
}
