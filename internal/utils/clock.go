package utils

import "time"

// Clock supplies the current time.  Reservations are stamped through a
// Clock so tests can pin the time.
type Clock interface {
    Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
    At time.Time
}

// Now returns c.At.
func (c FixedClock) Now() time.Time { return c.At }
