package usecase

import (
	"context"
	"log/slog"
)

// PruneExpired removes expired tokens across every configured broker.
func (s *Usecase) PruneExpired(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "PruneExpired")
	defer span.End()

	n, err := s.brokers.PruneExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to prune expired otp tokens", "deleted", n, "error", err)
		return n, err
	}

	slog.DebugContext(ctx, "expired otp tokens pruned", "deleted", n)
	return n, nil
}
