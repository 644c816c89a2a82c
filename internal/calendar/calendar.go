// Package calendar holds the local calendar periods (Day, Week, Month) and
// the half-open interval arithmetic used to place events on them.
//
// Periods are immutable values bound to the dateutil.Context they were
// built with. They know nothing about events.
package calendar

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval, zero for inverted ranges
func (i Interval) Duration() time.Duration {
	if !i.Start.Before(i.End) {
		return 0
	}
	return i.End.Sub(i.Start)
}

// IsEmpty reports whether the interval has no length
func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

// Contains reports whether t is in [Start, End)
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Overlaps reports whether both intervals share at least one instant
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// Intersection returns the common part of both intervals
func (i Interval) Intersection(o Interval) (Interval, bool) {
	if !i.Overlaps(o) {
		return Interval{}, false
	}

	out := i
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	return out, true
}
