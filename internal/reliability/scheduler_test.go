package reliability

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsAndCancels(t *testing.T) {
	s := NewScheduler(discardLogger())
	defer s.Stop()

	var runs atomic.Int32
	h, err := s.Every("tick", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	require.NoError(t, err)
	assert.Equal(t, "tick", h.Name())
	assert.Equal(t, []string{"tick"}, s.Jobs())

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	h.Cancel()
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
	assert.Empty(t, s.Jobs())
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	s := NewScheduler(discardLogger())
	defer s.Stop()

	var runs atomic.Int32
	_, err := s.Every("panicky", 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
		panic("boom")
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_Validation(t *testing.T) {
	s := NewScheduler(discardLogger())

	_, err := s.Every("zero", 0, func(context.Context) {})
	assert.Error(t, err)

	_, err = s.Every("dup", time.Hour, func(context.Context) {})
	require.NoError(t, err)
	_, err = s.Every("dup", time.Hour, func(context.Context) {})
	assert.Error(t, err)

	s.Stop()
	_, err = s.Every("late", time.Hour, func(context.Context) {})
	assert.ErrorIs(t, err, ErrSchedulerStopped)

	// повторная остановка безопасна
	s.Stop()
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := NewScheduler(discardLogger())

	started := make(chan struct{})
	var sawCancel atomic.Bool
	_, err := s.Every("long", 5*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		sawCancel.Store(true)
	})
	require.NoError(t, err)

	<-started
	s.Stop()
	assert.True(t, sawCancel.Load())
}
