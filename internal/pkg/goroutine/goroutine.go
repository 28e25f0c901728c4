// Package goroutine runs bounded fan-out work and collects the errors.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/otptoken/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is the per-CPU limit used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrClosed is recorded when Go is called after Wait.
var ErrClosed = errors.New("goroutine: manager is closed")

// Manager runs functions in goroutines with a concurrency limit.
//
// Unlike a fire-and-forget pool, Go blocks until a slot is free, so every
// scheduled task either runs or records the context error. A Manager is
// single use: after Wait returns it rejects new work.
type Manager struct {
	mu     sync.Mutex
	errs   []error
	wg     sync.WaitGroup
	sema   chan struct{}
	closed bool
}

// NewManager creates a Manager allowing at most maxGoroutine concurrent tasks.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Go schedules f, waiting for a free slot or for ctx to be done.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		slog.WarnContext(ctx, "goroutine manager is closed, skipping new goroutine")
		g.record(ErrClosed)
		return
	}

	select {
	case g.sema <- struct{}{}:
	case <-ctx.Done():
		g.record(ctx.Err())
		return
	}

	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", string(stack))
				}
				g.record(errors.New("goroutine: task panicked"))
			}
		}()

		if err := f(ctx); err != nil {
			g.record(err)
		}
	})
}

// Wait blocks until all scheduled tasks finish and returns the joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
