// Package clock abstracts the wall clock so elapsed-time and log-timestamp
// logic can be driven deterministically in tests.
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

// UnixMilli returns the clock's current time in milliseconds since the epoch,
// the unit task start times are persisted in.
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}

var (
	_ Clock = RealClock{}
	_ Clock = Func(nil)
)
