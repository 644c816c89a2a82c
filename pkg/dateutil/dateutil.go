package dateutil

import (
	"fmt"
	"time"
)

// Context is the calendar context every bucketing operation runs under:
// the timezone days are cut in and the weekday a week starts on.
//
// The zero Context uses UTC and starts weeks on Sunday.
type Context struct {
	Location     *time.Location
	FirstWeekday time.Weekday
}

// CalendarResolutionError reports a calendar component that could not be resolved
type CalendarResolutionError struct {
	Component string
	Value     string
	Err       error
}

func (e *CalendarResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve calendar %s %q: %v", e.Component, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot resolve calendar %s %q", e.Component, e.Value)
}

func (e *CalendarResolutionError) Unwrap() error {
	return e.Err
}

// NewContext resolves an IANA timezone name and validates the first weekday
func NewContext(tzName string, firstWeekday time.Weekday) (Context, error) {
	if firstWeekday < time.Sunday || firstWeekday > time.Saturday {
		return Context{}, &CalendarResolutionError{Component: "first weekday", Value: fmt.Sprint(int(firstWeekday))}
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Context{}, &CalendarResolutionError{Component: "timezone", Value: tzName, Err: err}
	}

	return Context{Location: loc, FirstWeekday: firstWeekday}, nil
}

// UTC returns a UTC context with Monday as the first weekday
func UTC() Context {
	return Context{Location: time.UTC, FirstWeekday: time.Monday}
}

// Local returns a context in the process timezone with Monday as the first weekday
func Local() Context {
	return Context{Location: time.Local, FirstWeekday: time.Monday}
}

func (c Context) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// In converts t to the context timezone
func (c Context) In(t time.Time) time.Time {
	return t.In(c.loc())
}

// Date builds local midnight for the given calendar date. Out of range
// components are normalized the way time.Date does.
func (c Context) Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, c.loc())
}

// StartOfDay returns local midnight of the day containing t
func (c Context) StartOfDay(t time.Time) time.Time {
	t = c.In(t)
	return c.Date(t.Year(), t.Month(), t.Day())
}

// AddDays moves t by n calendar days keeping the wall clock time, so a DST
// transition changes the elapsed duration rather than the time of day.
func (c Context) AddDays(t time.Time, n int) time.Time {
	t = c.In(t)
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc())
}

// StartOfWeek returns midnight of the first weekday on or before t
func (c Context) StartOfWeek(t time.Time) time.Time {
	t = c.In(t)
	back := (int(t.Weekday()) - int(c.FirstWeekday) + 7) % 7
	return c.Date(t.Year(), t.Month(), t.Day()-back)
}

// AddWeeks moves t by n weeks of seven calendar days
func (c Context) AddWeeks(t time.Time, n int) time.Time {
	return c.AddDays(t, 7*n)
}

// StartOfMonth returns midnight of the first day of the month containing t
func (c Context) StartOfMonth(t time.Time) time.Time {
	t = c.In(t)
	return c.Date(t.Year(), t.Month(), 1)
}

// AddMonths returns the start of the month n months after the month containing t.
// Anchoring on the first avoids day overflow (Jan 31 + 1 month is February).
func (c Context) AddMonths(t time.Time, n int) time.Time {
	t = c.In(t)
	return c.Date(t.Year(), t.Month()+time.Month(n), 1)
}

// Normalize pins t to hour:minute on its local day. Paging anchors use noon
// so that day arithmetic never lands on a skipped or repeated midnight.
func (c Context) Normalize(t time.Time, hour, minute int) time.Time {
	t = c.In(t)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, c.loc())
}

// IsSameDay returns true if both instants fall on the same local day
func (c Context) IsSameDay(a, b time.Time) bool {
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}

// DaysInMonth returns the number of days in the given month (28-31)
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// GetWeekNumber returns the ISO week number for the given date
func GetWeekNumber(date time.Time) (year int, week int) {
	year, week = date.ISOWeek()
	return
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// FormatISO8601 formats date to ISO 8601 format with timezone
// Example: 2025-01-15T10:00:00.000+0000
func FormatISO8601(date time.Time) string {
	return date.Format("2006-01-02T15:04:05.000-0700")
}

// ParseDate parses date string in various formats. Layouts without a zone
// are interpreted in loc.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	formats := []string{
		"2006-01-02",
		"02.01.2006",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}
