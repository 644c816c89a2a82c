package calendar

import (
	"time"

	"github.com/username/daybook/pkg/dateutil"
)

// Week is seven local days beginning on the context's first weekday
type Week struct {
	ctx   dateutil.Context
	start time.Time
}

// NewWeek buckets t into the week that contains it
func NewWeek(t time.Time, ctx dateutil.Context) Week {
	return Week{ctx: ctx, start: ctx.StartOfWeek(t)}
}

// Start returns local midnight of the week's first day
func (w Week) Start() time.Time { return w.start }

// End returns the start of the following week
func (w Week) End() time.Time {
	return w.ctx.Date(w.start.Year(), w.start.Month(), w.start.Day()+7)
}

// Interval returns [Start, End)
func (w Week) Interval() Interval {
	return Interval{Start: w.start, End: w.End()}
}

// Days returns the seven consecutive days of the week
func (w Week) Days() []Day {
	first := Day{ctx: w.ctx, date: w.start}
	days := make([]Day, 7)
	for i := range days {
		days[i] = first.Adding(i)
	}
	return days
}

// Adding shifts the week by n weeks
func (w Week) Adding(n int) Week {
	return Week{ctx: w.ctx, start: w.ctx.Date(w.start.Year(), w.start.Month(), w.start.Day()+7*n)}
}

// Next returns the following week
func (w Week) Next() Week { return w.Adding(1) }

// Prev returns the preceding week
func (w Week) Prev() Week { return w.Adding(-1) }

// Contains reports whether t falls inside the week
func (w Week) Contains(t time.Time) bool { return w.Interval().Contains(t) }

// Equal reports whether both weeks start at the same instant
func (w Week) Equal(o Week) bool { return w.start.Equal(o.start) }

// Before reports whether w starts before o
func (w Week) Before(o Week) bool { return w.start.Before(o.start) }

// Compare returns -1, 0 or +1 ordering weeks by their start instant
func (w Week) Compare(o Week) int { return w.start.Compare(o.start) }

// String formats the week as "week of YYYY-MM-DD"
func (w Week) String() string { return "week of " + w.start.Format("2006-01-02") }
