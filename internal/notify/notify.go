// AngelaMos | 2026
// notify.go

package notify

import (
	"context"
	"log/slog"
)

// Sender delivers out-of-band notifications. Callers treat delivery as
// best-effort: errors are logged, never surfaced to API clients.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender is the development and test sender; it writes the message to
// the log instead of delivering it.
type LogSender struct {
	Logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(
	ctx context.Context,
	recipient, subject, body string,
) error {
	s.Logger.InfoContext(ctx, "notification (mail disabled)",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}
