package clock

import "time"

// Clock supplies the current time to code that stamps narration and snapshots
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock that always reports the same instant. Handy in tests.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant
func (f Fixed) Now() time.Time {
	return f.At
}
