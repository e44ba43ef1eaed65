// Package jobs runs the background schedules of the service.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically deletes expired verification codes. Verification
// reads exclude expired rows on their own, so the sweep only reclaims
// storage; its cadence does not affect correctness.
type Sweeper struct {
	scheduler gocron.Scheduler
}

func NewSweeper(store purger, interval time.Duration) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) {
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				slog.Error("otp expiry sweep failed", "error", err)
				return
			}
			if n > 0 {
				slog.Info("otp expiry sweep removed records", "count", n)
			}
		}),
		gocron.WithName("otp-expiry-sweep"),
		// A slow sweep must not stack a second one on top.
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	return &Sweeper{scheduler: scheduler}, nil
}

func (s *Sweeper) Start() {
	s.scheduler.Start()
	slog.Info("otp expiry sweeper started")
}

func (s *Sweeper) Shutdown() error {
	return s.scheduler.Shutdown()
}
