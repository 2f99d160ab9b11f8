package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerCollectsErrors(t *testing.T) {
	errBroken := errors.New("broken")
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	var stopped atomic.Bool
	r.Go(
		NamedRun("broken", RunnableFunc(func(context.Context) error {
			return errBroken
		})),
		NamedRun("healthy", RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			stopped.Store(true)
			return ctx.Err()
		})),
	)
	require.Equal(t, []string{"broken", "healthy"}, r.Tasks())

	time.AfterFunc(20*time.Millisecond, cancel)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, stopped.Load())
	require.True(t, errors.Is(err, errBroken))

	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	require.Equal(t, "broken", taskErr.Task)
	require.Equal(t, "broken: broken", err.Error())
}

func TestRunnerNoErrors(t *testing.T) {
	r := NewRunner()
	r.Go(RunnableFunc(func(context.Context) error { return nil }))
	require.Equal(t, []string{"0"}, r.Tasks())
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil, errors.New("a"), nil, errors.New("b"))
	require.Len(t, errs.Errors, 2)
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	closedCh := make(chan struct{})
	var closes atomic.Int32
	closer := closerFunc(func() error {
		if closes.Add(1) == 1 {
			close(closedCh)
		}
		return nil
	})
	time.AfterFunc(10*time.Millisecond, cancel)
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closedCh
		return errors.New("closed")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(1), closes.Load())

	err = RunWithContextCloser(context.Background(), closer, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, int32(2), closes.Load())
}

func TestSystemTime(t *testing.T) {
	before := time.Now()
	now := SystemTime.Time()
	require.False(t, now.Before(before))
}
