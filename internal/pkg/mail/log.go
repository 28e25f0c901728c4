package mail

import (
	"context"
	"log/slog"
)

// Log records what would have been sent. Bodies are never logged.
type Log struct {
	defaultFrom string
}

func NewLog(from string) *Log {
	return &Log{defaultFrom: from}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	from, err := msg.sender(l.defaultFrom)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "email sent (log driver)", "from", from, "to", msg.To, "subject", msg.Subject)
	return nil
}

func (l *Log) Close() error {
	return nil
}
