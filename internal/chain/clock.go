package chain

import "time"

// Clock supplies append timestamps. Injecting it keeps chain behavior
// deterministic in tests and replay tooling.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC, truncated to microseconds.
// Postgres timestamptz columns carry microsecond precision, so anything
// finer would change the digest preimage after an archive round trip.
type RealClock struct{}

// Now implements Clock.
func (RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
