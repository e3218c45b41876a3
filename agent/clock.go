package agent

import (
	"context"
	"time"
)

// ClockFunc adapts a function to a Clock.
type ClockFunc func(ctx context.Context) (uint64, error)

func (f ClockFunc) Height(ctx context.Context) (uint64, error) {
	return f(ctx)
}

// UnixClock is a clock whose logical time is the current Unix time in
// seconds.
type UnixClock struct{}

func (UnixClock) Height(ctx context.Context) (uint64, error) {
	return uint64(time.Now().Unix()), nil
}
