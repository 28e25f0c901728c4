package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type pruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// RegisterCronJob schedules the expired token pruner every interval. A
// non-positive interval leaves it disabled.
func RegisterCronJob(ctx context.Context, s gocron.Scheduler, uc pruner, interval time.Duration) error {
	if interval <= 0 {
		slog.InfoContext(ctx, "otp token pruner disabled")
		return nil
	}

	_, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) error {
			_, err := uc.PruneExpired(ctx)
			return err
		}),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("otp token prune expired"),
	)
	return err
}
