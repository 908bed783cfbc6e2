package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	c := Or(nil)
	before := time.Now()
	now := c.Now()
	assert.False(t, now.Before(before))
	assert.GreaterOrEqual(t, c.Since(before), time.Duration(0))
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewMockClock(start)
	assert.Same(t, c, Or(c))

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now())

	c.Advance(time.Minute)
	assert.Equal(t, time.Minute, c.Since(start))

	c.SetStep(time.Second)
	t0 := c.Now()
	assert.Equal(t, start.Add(time.Minute), t0)
	assert.Equal(t, time.Second, c.Since(t0))
}
