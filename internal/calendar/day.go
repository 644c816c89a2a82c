package calendar

import (
	"time"

	"github.com/username/daybook/pkg/dateutil"
)

// Day is one local calendar day. Its date is always local midnight.
type Day struct {
	ctx  dateutil.Context
	date time.Time
}

// NewDay buckets any instant into the local day that contains it
func NewDay(t time.Time, ctx dateutil.Context) Day {
	return Day{ctx: ctx, date: ctx.StartOfDay(t)}
}

// Context returns the calendar context the day was built with
func (d Day) Context() dateutil.Context { return d.ctx }

// Date returns the canonical start-of-day instant
func (d Day) Date() time.Time { return d.date }

// Start is the same instant as Date
func (d Day) Start() time.Time { return d.date }

// End is the start of the following day. Across a DST change the day is
// 23 or 25 hours long.
func (d Day) End() time.Time {
	return d.ctx.Date(d.date.Year(), d.date.Month(), d.date.Day()+1)
}

// Interval returns [Start, End)
func (d Day) Interval() Interval {
	return Interval{Start: d.Start(), End: d.End()}
}

// Adding shifts the day by n calendar days
func (d Day) Adding(n int) Day {
	return Day{ctx: d.ctx, date: d.ctx.Date(d.date.Year(), d.date.Month(), d.date.Day()+n)}
}

// Next returns the following day
func (d Day) Next() Day { return d.Adding(1) }

// Prev returns the preceding day
func (d Day) Prev() Day { return d.Adding(-1) }

// Equal reports whether both days start at the same instant
func (d Day) Equal(o Day) bool { return d.date.Equal(o.date) }

// Before reports whether d starts before o
func (d Day) Before(o Day) bool { return d.date.Before(o.date) }

// After reports whether d starts after o
func (d Day) After(o Day) bool { return d.date.After(o.date) }

// Compare returns -1, 0 or +1 ordering days by their start instant
func (d Day) Compare(o Day) int { return d.date.Compare(o.date) }

// String formats the day as YYYY-MM-DD
func (d Day) String() string { return d.date.Format("2006-01-02") }

// Contains reports whether the instant falls inside this local day
func (d Day) Contains(t time.Time) bool {
	return d.Interval().Contains(t)
}

// Overlaps reports whether any part of [start, end) lies within the day.
// An event ending exactly at the day start, or starting exactly at the day
// end, does not overlap. Zero-length and inverted ranges are treated as the
// single instant start.
func (d Day) Overlaps(start, end time.Time) bool {
	if !start.Before(end) {
		return d.Contains(start)
	}
	return Interval{Start: start, End: end}.Overlaps(d.Interval())
}

// OverlapFraction returns the share (0..1) of [start, end) that falls inside
// the day. Degenerate ranges have no duration and yield 0.
func (d Day) OverlapFraction(start, end time.Time) float64 {
	event := Interval{Start: start, End: end}
	if event.IsEmpty() {
		return 0
	}

	clipped, ok := event.Intersection(d.Interval())
	if !ok {
		return 0
	}
	return float64(clipped.Duration()) / float64(event.Duration())
}

// DaysInRange returns every day between a and b inclusive in ascending order,
// regardless of argument order.
func DaysInRange(a, b Day) []Day {
	lower, upper := a, b
	if upper.Before(lower) {
		lower, upper = upper, lower
	}

	out := []Day{lower}
	for cur := lower; cur.Before(upper); {
		cur = cur.Next()
		out = append(out, cur)
	}
	return out
}

// Clamp pins candidate to the first or last element of an ascending day
// range. It returns false when days is empty.
func Clamp(candidate Day, days []Day) (Day, bool) {
	if len(days) == 0 {
		return Day{}, false
	}

	first, last := days[0], days[len(days)-1]
	switch {
	case candidate.Before(first):
		return first, true
	case candidate.After(last):
		return last, true
	default:
		return candidate, true
	}
}
