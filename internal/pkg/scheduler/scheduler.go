// Package scheduler builds the gocron scheduler shared by background jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// New returns a started scheduler running jobs in UTC with ctx as their
// parent context. Job lifecycle events are logged with slog.
func New(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithContext(ctx),
			gocron.WithEventListeners(
				gocron.BeforeJobRuns(func(jobID uuid.UUID, jobName string) {
					slog.DebugContext(ctx, "job started", "job_name", jobName, "job_id", jobID.String())
				}),
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					slog.ErrorContext(ctx, "job failed", "job_name", jobName, "job_id", jobID.String(), "error", err)
				}),
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					slog.ErrorContext(ctx, "job panicked", "job_name", jobName, "job_id", jobID.String(), "panic", recoverData)
				}),
			),
		),
		gocron.WithLogger(logger{}),
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

// logger forwards gocron's own logs to slog.
type logger struct{}

func (logger) Debug(msg string, args ...any) { slog.Debug(msg, args...) }
func (logger) Info(msg string, args ...any) { slog.Info(msg, args...) }
func (logger) Warn(msg string, args ...any) { slog.Warn(msg, args...) }
func (logger) Error(msg string, args ...any) { slog.Error(msg, args...) }
