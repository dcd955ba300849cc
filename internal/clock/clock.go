// Package clock lets callers replace wall-clock time in tests.
package clock

import "time"

type Clocker interface {
	Now() time.Time
}

type TimeClocker struct{}

func New() *TimeClocker {
	return &TimeClocker{}
}

func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

// NowMillis returns the clock's current time in milliseconds since the Unix epoch.
func NowMillis(c Clocker) int64 {
	return c.Now().UnixMilli()
}
