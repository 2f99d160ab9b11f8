package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background tasks.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// TimeSource provides the current time.
type TimeSource interface {
	Time() time.Time
}

// TimeSourceFunc is the func form of TimeSource.
type TimeSourceFunc func() time.Time

// Time implements TimeSource.
func (f TimeSourceFunc) Time() time.Time {
	return f()
}

// SystemTime is the wall clock.
var SystemTime TimeSource = TimeSourceFunc(time.Now)
