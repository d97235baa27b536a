// Package jobs runs the periodic background work of the server.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Refresher rebuilds a derived view from the source of truth.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	inner gocron.Scheduler
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{inner: s}, nil
}

// ScheduleCapacityReconcile refreshes the cached capacity board every
// interval, starting immediately. Runs never overlap.
func (s *Scheduler) ScheduleCapacityReconcile(ctx context.Context, r Refresher, interval time.Duration) error {
	j, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := r.Refresh(ctx); err != nil {
				log.Printf("Jobs: capacity reconcile failed: %v", err)
			}
		}),
		gocron.WithName("capacity-reconcile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule capacity reconcile: %w", err)
	}
	log.Printf("Jobs: capacity reconcile every %s (job %s)", interval, j.ID())
	return nil
}

func (s *Scheduler) Start() {
	s.inner.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.inner.Shutdown()
}
