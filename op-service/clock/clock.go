// Package clock provides an abstraction for time to enable testing of functionality that uses time as an input.
package clock

import (
	"sync"
	"time"
)

// Clock represents time in a way that can be provided by varying implementations.
// Methods are designed to be direct replacements for methods in the time package.
type Clock interface {
	// Now provides the current local time. Equivalent to time.Now
	Now() time.Time

	// Since returns the time elapsed since t. It is shorthand for time.Now().Sub(t).
	Since(time.Time) time.Duration
}

// SystemClock provides an instance of Clock that uses the system clock via methods in the time package.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (s systemClock) Now() time.Time {
	return time.Now()
}

func (s systemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// DeterministicClock is a Clock that only moves forward when told to.
type DeterministicClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ Clock = (*DeterministicClock)(nil)

// NewDeterministicClock creates a new clock where time only advances when the DeterministicClock.AdvanceTime method is called.
// This is intended for use in situations where a deterministic clock is required, such as testing or event driven systems.
func NewDeterministicClock(now time.Time) *DeterministicClock {
	return &DeterministicClock{now: now}
}

func (s *DeterministicClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *DeterministicClock) Since(t time.Time) time.Duration {
	return s.Now().Sub(t)
}

// AdvanceTime moves the time forward by the given duration.
func (s *DeterministicClock) AdvanceTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}
