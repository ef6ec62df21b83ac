package infrastructure

import (
	"context"
	"testing"
	"time"

	"bizsim/simulation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsFireInTimeThenSchedulingOrder(t *testing.T) {
	scheduler := NewEventScheduler()
	var fired []string
	record := func(name string) func() {
		return func() { fired = append(fired, name) }
	}

	require.NoError(t, scheduler.ScheduleAfter(2*time.Second, record("late")))
	require.NoError(t, scheduler.ScheduleAfter(time.Second, record("first")))
	require.NoError(t, scheduler.ScheduleAfter(time.Second, record("second")))
	require.NoError(t, scheduler.ScheduleAfter(0, record("now")))

	for scheduler.Step() {
	}
	assert.Equal(t, []string{"now", "first", "second", "late"}, fired)
	assert.Equal(t, 2*time.Second, scheduler.Now())
	assert.Equal(t, 4, scheduler.Fired())
}

func TestContinuationsScheduleRelativeToTheCurrentTime(t *testing.T) {
	scheduler := NewEventScheduler()
	var at []time.Duration
	require.NoError(t, scheduler.ScheduleAfter(time.Second, func() {
		at = append(at, scheduler.Now())
		require.NoError(t, scheduler.ScheduleAfter(time.Second, func() {
			at = append(at, scheduler.Now())
		}))
	}))

	require.NoError(t, scheduler.RunUntil(context.Background(), time.Minute))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
	assert.Equal(t, time.Minute, scheduler.Now())
}

func TestRunUntilLeavesLaterEventsPending(t *testing.T) {
	scheduler := NewEventScheduler()
	fired := 0
	for _, delay := range []time.Duration{time.Second, 5 * time.Second, 10 * time.Second} {
		require.NoError(t, scheduler.ScheduleAfter(delay, func() { fired++ }))
	}

	require.NoError(t, scheduler.RunUntil(context.Background(), 5*time.Second))
	assert.Equal(t, 2, fired)
	assert.Equal(t, 1, scheduler.Pending())
	assert.Equal(t, 5*time.Second, scheduler.Now())
}

func TestRunUntilStopsOnCancellation(t *testing.T) {
	scheduler := NewEventScheduler()
	require.NoError(t, scheduler.ScheduleAfter(time.Second, func() {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, scheduler.RunUntil(ctx, time.Minute), context.Canceled)
	assert.Equal(t, 1, scheduler.Pending())
}

func TestScheduleAfterRejectsInvalidInput(t *testing.T) {
	scheduler := NewEventScheduler()
	assert.ErrorIs(t, scheduler.ScheduleAfter(-time.Second, func() {}), domain.ErrInvalidDelay)
	assert.ErrorIs(t, scheduler.ScheduleAfter(time.Second, nil), domain.ErrNilContinuation)
	assert.Zero(t, scheduler.Pending())
}
