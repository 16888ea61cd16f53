package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUpToMax(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewWithClock(15, time.Minute, func() time.Time { return now })

	for i := 0; i < 15; i++ {
		res := l.Check("203.0.113.7")
		assert.True(t, res.Allowed, "call %d should be allowed", i+1)
	}

	res := l.Check("203.0.113.7")
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestLimiterWindowReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewWithClock(2, time.Minute, func() time.Time { return now })

	assert.True(t, l.Check("ip").Allowed)
	assert.True(t, l.Check("ip").Allowed)
	assert.False(t, l.Check("ip").Allowed)

	now = now.Add(61 * time.Second)
	assert.True(t, l.Check("ip").Allowed)
	assert.True(t, l.Check("ip").Allowed)
	assert.False(t, l.Check("ip").Allowed)
}

func TestLimiterIsolatesIdentifiers(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewWithClock(1, time.Minute, func() time.Time { return now })

	assert.True(t, l.Check("a").Allowed)
	assert.False(t, l.Check("a").Allowed)
	assert.True(t, l.Check("b").Allowed)
}

func TestLimiterRetryAfterShrinks(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewWithClock(1, time.Minute, func() time.Time { return now })

	l.Check("ip")
	first := l.Check("ip")
	assert.False(t, first.Allowed)

	now = now.Add(30 * time.Second)
	second := l.Check("ip")
	assert.False(t, second.Allowed)
	assert.Less(t, second.RetryAfter, first.RetryAfter)
}
