package llm

import (
	"context"
	"time"

	"proposalapi/internal/config"
)

// retryModel wraps a Model and retries failed calls with a fixed delay up to
// a bounded attempt count. A context cancellation always stops the loop.
type retryModel struct {
	inner       Model
	maxAttempts int
	delay       time.Duration
	timeout     time.Duration
}

func withRetry(m Model, cfg config.LLMConfig) Model {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	return &retryModel{
		inner:       m,
		maxAttempts: attempts,
		delay:       time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		timeout:     time.Duration(cfg.RequestTimeoutSec) * time.Second,
	}
}

func (r *retryModel) Generate(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		out, err := r.generateOnce(ctx, system, user)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		timer := time.NewTimer(r.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", lastErr
}

func (r *retryModel) generateOnce(ctx context.Context, system, user string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.inner.Generate(ctx, system, user)
}
