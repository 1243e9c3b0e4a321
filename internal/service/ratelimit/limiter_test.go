package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	clock := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	l := New(3, 1)
	l.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"), "request %d", i)
	}
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	clock = clock.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestLimiter_ForgetsIdleKeys(t *testing.T) {
	clock := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 0)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	clock = clock.Add(11 * time.Minute)
	assert.True(t, l.Allow("a"))
}
