package actor

import "time"

// Clock is the injectable time source used by runtimes. Reducers never call
// a Clock; runtimes stamp inputs with times taken from one.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

// Now implements Clock.
func (RealClock) Now() time.Time { return time.Now() }
