// Package jobs runs periodic background maintenance.
package jobs

import (
	"context"
	"fmt"
	"time"

	"boatbooking/internal/utils"

	"github.com/go-co-op/gocron/v2"
)

type DraftSweeperStore interface {
	Sweep(ctx context.Context) (int, error)
}

// DraftSweeper evicts expired booking drafts on a fixed interval.
type DraftSweeper struct {
	store    DraftSweeperStore
	interval time.Duration
	sched    gocron.Scheduler
}

func NewDraftSweeper(store DraftSweeperStore, interval time.Duration) (*DraftSweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	s := &DraftSweeper{store: store, interval: interval, sched: sched}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweepOnce),
		gocron.WithName("draft-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule draft sweep: %w", err)
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is done.
func (s *DraftSweeper) Run(ctx context.Context) error {
	utils.LogEvent("", "jobs", "draft_sweep", fmt.Sprintf("scheduler started interval=%s", s.interval))
	s.sched.Start()
	<-ctx.Done()
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

func (s *DraftSweeper) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n, err := s.store.Sweep(ctx)
	log := utils.Logger("", "jobs", "draft_sweep")
	if err != nil {
		log.WithError(err).Warn("draft sweep failed")
		return
	}
	if n > 0 {
		log.WithField("removed", n).Info("expired drafts removed")
	}
}
