package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, zerolog.Nop())

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestSchedulerStopCancelsInflightCycle(t *testing.T) {
	cancelled := make(chan struct{})
	s := NewScheduler(time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}, zerolog.Nop())

	s.Start(context.Background())
	s.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("expected in-flight cycle to be cancelled before Stop returned")
	}
}

func TestSchedulerFailedCycleKeepsPolling(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("dashboard load failed")
	}, zerolog.Nop())

	s.Start(context.Background())
	defer s.Stop()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(0, func(context.Context) error { return nil }, zerolog.Nop())
	assert.Equal(t, DefaultRefreshInterval, s.interval)
	s.Stop()
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
