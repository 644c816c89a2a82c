package calendar

import (
	"fmt"
	"time"

	"github.com/username/daybook/pkg/dateutil"
)

// Month is a calendar month in a given context
type Month struct {
	ctx   dateutil.Context
	year  int
	month time.Month
}

// NewMonth buckets t into the month that contains it
func NewMonth(t time.Time, ctx dateutil.Context) Month {
	local := ctx.In(t)
	return Month{ctx: ctx, year: local.Year(), month: local.Month()}
}

// MonthOf builds a month from explicit components. month must be 1-12.
func MonthOf(year int, month time.Month, ctx dateutil.Context) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, &dateutil.CalendarResolutionError{Component: "month", Value: fmt.Sprint(int(month))}
	}
	return Month{ctx: ctx, year: year, month: month}, nil
}

// StartOfMonth returns midnight of the first of the month containing t
func StartOfMonth(t time.Time, ctx dateutil.Context) time.Time {
	return ctx.StartOfMonth(t)
}

// NextMonthStart returns the first instant of the month following the one
// containing t. December rolls over into January of the next year.
func NextMonthStart(t time.Time, ctx dateutil.Context) time.Time {
	return ctx.AddMonths(t, 1)
}

// Year returns the calendar year
func (m Month) Year() int { return m.year }

// Month returns the month of the year
func (m Month) Month() time.Month { return m.month }

// Start returns local midnight of the first day
func (m Month) Start() time.Time { return m.ctx.Date(m.year, m.month, 1) }

// End returns the start of the following month
func (m Month) End() time.Time { return m.ctx.Date(m.year, m.month+1, 1) }

// Interval returns [Start, End)
func (m Month) Interval() Interval { return Interval{Start: m.Start(), End: m.End()} }

// NumberOfDays returns the day count of the month (28-31)
func (m Month) NumberOfDays() int {
	return dateutil.DaysInMonth(m.year, m.month)
}

// Days returns the days strictly inside the month
func (m Month) Days() []Day {
	first := NewDay(m.Start(), m.ctx)
	days := make([]Day, m.NumberOfDays())
	for i := range days {
		days[i] = first.Adding(i)
	}
	return days
}

// Weeks returns every week that intersects the month
func (m Month) Weeks() []Week {
	end := m.End()

	var weeks []Week
	for w := NewWeek(m.Start(), m.ctx); w.Start().Before(end); w = w.Next() {
		weeks = append(weeks, w)
	}
	return weeks
}

// GridWeeks returns the month as full seven-day rows, from the week holding
// the first day to the week holding the last day. A month spans 4 to 6 rows.
func (m Month) GridWeeks() [][]Day {
	first := NewWeek(m.Start(), m.ctx)
	last := NewWeek(m.ctx.Date(m.year, m.month, m.NumberOfDays()), m.ctx)

	var rows [][]Day
	for w := first; !w.Start().After(last.Start()); w = w.Next() {
		rows = append(rows, w.Days())
	}
	return rows
}

// Adding shifts by n calendar months
func (m Month) Adding(n int) Month {
	return NewMonth(m.ctx.AddMonths(m.Start(), n), m.ctx)
}

// Next returns the following month
func (m Month) Next() Month { return m.Adding(1) }

// Prev returns the preceding month
func (m Month) Prev() Month { return m.Adding(-1) }

// Contains reports whether t falls inside the month
func (m Month) Contains(t time.Time) bool { return m.Interval().Contains(t) }

// Equal reports whether both months start at the same instant
func (m Month) Equal(o Month) bool { return m.Start().Equal(o.Start()) }

// Before reports whether m starts before o
func (m Month) Before(o Month) bool { return m.Start().Before(o.Start()) }

// Compare returns -1, 0 or +1 ordering months by their start instant
func (m Month) Compare(o Month) int { return m.Start().Compare(o.Start()) }

// String formats the month as "January 2025"
func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.month, m.year)
}
