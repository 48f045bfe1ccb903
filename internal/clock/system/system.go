// Package system provides a real clock implementation.
package system

import "time"

// Clock stamps dedup entries and notification records using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time. Record IDs and retention cutoffs are computed in the operator's zone.
func (Clock) Now() time.Time {
	return time.Now()
}
