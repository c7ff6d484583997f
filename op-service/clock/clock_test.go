package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeterministicClock(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := NewDeterministicClock(start)
	require.Equal(t, start, c.Now())
	require.Zero(t, c.Since(start))

	c.AdvanceTime(90 * time.Minute)
	require.Equal(t, start.Add(90*time.Minute), c.Now())
	require.Equal(t, 90*time.Minute, c.Since(start))
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	now := SystemClock.Now()
	require.False(t, now.Before(before))
	require.GreaterOrEqual(t, SystemClock.Since(before), time.Duration(0))
}
