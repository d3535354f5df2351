package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// DefaultRetryInterval is how long the client waits after a failed request.
const DefaultRetryInterval = 60 * time.Second

// ErrRetriesExhausted is returned only when a finite RetryPolicy gives up.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy controls how failed requests are repeated. The interval is
// fixed, there is no exponential backoff.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int // 0 retries forever
}

// DefaultRetryPolicy waits a minute between attempts and never gives up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: DefaultRetryInterval}
}

func (p RetryPolicy) exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

// SleepFunc blocks for d. It returns early with an error only when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
