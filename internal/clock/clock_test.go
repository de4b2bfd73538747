package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var start = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(start)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "b2") })

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b", "b2"}, order)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "b2", "c"}, order)
	assert.Equal(t, start.Add(3*time.Second), c.Now())
}

func TestFakeNowDuringCallback(t *testing.T) {
	c := NewFake(start)
	var seen time.Time
	c.AfterFunc(5*time.Second, func() { seen = c.Now() })

	c.Advance(time.Minute)
	assert.Equal(t, start.Add(5*time.Second), seen)
	assert.Equal(t, start.Add(time.Minute), c.Now())
}

func TestFakeCallbackSchedulesMore(t *testing.T) {
	c := NewFake(start)
	fired := 0
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})

	c.Advance(3 * time.Second)
	assert.Equal(t, 2, fired)
}

func TestFakeStop(t *testing.T) {
	c := NewFake(start)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Hour)
	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeNegativeDelayFiresOnNextAdvance(t *testing.T) {
	c := NewFake(start)
	fired := false
	c.AfterFunc(-time.Second, func() { fired = true })

	c.Advance(0)
	assert.True(t, fired)
}

func TestRealAfterFunc(t *testing.T) {
	c := Real()
	var wg sync.WaitGroup
	wg.Add(1)
	before := c.Now()
	c.AfterFunc(10*time.Millisecond, wg.Done)
	wg.Wait()
	assert.GreaterOrEqual(t, c.Now().Sub(before), 10*time.Millisecond)

	stopped := c.AfterFunc(time.Hour, func() { t.Error("stopped timer fired") })
	assert.True(t, stopped.Stop())
}
