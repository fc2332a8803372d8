package nlq

import (
	"context"
	"log/slog"
	"time"
)

// RetryCompleter wraps a ChatCompleter with bounded retries and exponential
// backoff. Completion endpoints fail transiently often enough that one
// retry layer belongs here rather than in every caller.
type RetryCompleter struct {
	Inner        ChatCompleter
	MaxAttempts  int
	InitialDelay time.Duration
	Logger       *slog.Logger
}

func (r *RetryCompleter) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := r.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		reply, err := r.Inner.Complete(ctx, system, user, temperature)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if r.Logger != nil {
			r.Logger.WarnContext(ctx, "completion attempt failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.String("retry_in", delay.String()),
				slog.Any("error", err),
			)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", lastErr
}
