package clock

import "time"

// Clock provides the time source for server timestamps (LastSync,
// BanTimestamp, event logs). Mockable so escalation and verification
// tests can pin time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC. Stored timestamps are compared
// against client-supplied epoch millis, so the zone must be fixed.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
