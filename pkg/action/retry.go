package action

import (
	"context"
	"math"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// executeWithRetry runs fn up to max_attempts times. The pause before
// attempt N is delay * backoff^(N-1) seconds. Each failed attempt is
// logged; only the last error is returned, after the attempts are
// exhausted.
func executeWithRetry(ctx context.Context, logger logging.Logger, action *workflow.Action, fn func() (interface{}, error)) (interface{}, error) {
	policy := action.Retry
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := policy.Backoff
	if backoff <= 0 {
		backoff = 1.0
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		logger.Warn("action attempt failed",
			logging.F("action_id", action.ID),
			logging.F("action_type", string(action.Type)),
			logging.F("attempt", attempt),
			logging.F("max_attempts", maxAttempts),
			logging.F("error", err))

		if attempt == maxAttempts {
			break
		}

		pause := time.Duration(policy.Delay * math.Pow(backoff, float64(attempt-1)) * float64(time.Second))
		if pause > 0 {
			timer := time.NewTimer(pause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil, lastErr
}
