package render

import (
	"context"
	"time"
)

// Clock suspends the poll loop between attempts.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock sleeps on the wall clock and wakes early when ctx ends.
type SystemClock struct{}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
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
