package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurufuwa/board/internal/clock"
)

func TestSchedulerFiresInDeadlineOrder(t *testing.T) {
	c := clock.NewFake(start)
	var fired []int64
	s := NewScheduler(c, func(id int64) { fired = append(fired, id) })

	require.True(t, s.Schedule(1, 30*time.Second))
	require.True(t, s.Schedule(2, 10*time.Second))
	require.True(t, s.Schedule(3, 20*time.Second))
	assert.Equal(t, 3, s.Pending())

	c.Advance(time.Minute)
	assert.Equal(t, []int64{2, 3, 1}, fired)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerKeepsFirstSchedule(t *testing.T) {
	c := clock.NewFake(start)
	var fired []int64
	s := NewScheduler(c, func(id int64) { fired = append(fired, id) })

	require.True(t, s.Schedule(1, 10*time.Second))
	assert.False(t, s.Schedule(1, time.Hour))

	deadline, ok := s.Deadline(1)
	require.True(t, ok)
	assert.Equal(t, start.Add(10*time.Second), deadline)

	c.Advance(11 * time.Second)
	assert.Equal(t, []int64{1}, fired)
	_, ok = s.Deadline(1)
	assert.False(t, ok)
}

func TestSchedulerNegativeDelay(t *testing.T) {
	c := clock.NewFake(start)
	var fired []int64
	s := NewScheduler(c, func(id int64) { fired = append(fired, id) })

	s.Schedule(5, -time.Second)
	deadline, _ := s.Deadline(5)
	assert.Equal(t, start, deadline)

	c.Advance(0)
	assert.Equal(t, []int64{5}, fired)
}

func TestSchedulerStop(t *testing.T) {
	c := clock.NewFake(start)
	var fired []int64
	s := NewScheduler(c, func(id int64) { fired = append(fired, id) })

	s.Schedule(1, time.Second)
	s.Schedule(2, 2*time.Second)
	s.Stop()

	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, c.Pending())
	assert.False(t, s.Schedule(3, time.Second))

	c.Advance(time.Minute)
	assert.Empty(t, fired)
	s.Stop()
}
