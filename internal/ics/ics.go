// Package ics converts between iCalendar data and store entries. It is the
// storage collaborator that seeds a store and writes it back out; the store
// itself never touches I/O.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/internal/store"
	"github.com/username/daybook/pkg/dateutil"
)

const defaultMaxOccurrences = 1000

// namespace for identifiers derived from iCalendar UIDs
var uidNamespace = uuid.MustParse("6f1c1f2e-3b7a-4c55-9a51-0d2b7d9e8a10")

// LoadOptions controls recurrence expansion
type LoadOptions struct {
	// Window bounds recurring event expansion. Single events are kept
	// regardless of the window.
	Window calendar.Interval

	// Context places all-day events on local days
	Context dateutil.Context

	// MaxOccurrences caps the instances produced per recurring event
	MaxOccurrences int
}

// LoadResult is what Load produced
type LoadResult struct {
	Entries   []store.Entry
	Skipped   int
	Truncated []string // UIDs that hit MaxOccurrences
}

type parsedEvent struct {
	uid         string
	summary     string
	description string
	start       time.Time
	end         time.Time
	allDay      bool
	rrule       string
	exdates     []time.Time

	// set on a VEVENT that replaces one instance of a series
	recurrenceID mo.Option[time.Time]
}

// Load parses r and returns one entry per event occurrence. Events without
// a positive duration are skipped and logged.
func Load(r io.Reader, opts LoadOptions, logger *zap.Logger) (*LoadResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = defaultMaxOccurrences
	}
	if opts.Window.End.Before(opts.Window.Start) {
		return nil, errors.New("ics: window ends before it starts")
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	result := &LoadResult{}

	var events, overrides []parsedEvent
	overridden := make(map[string][]time.Time)
	for _, ve := range cal.Events() {
		ev, err := parseEvent(ve, opts.Context)
		if err != nil {
			logger.Warn("Skipping event", zap.Error(err))
			result.Skipped++
			continue
		}
		if rid, ok := ev.recurrenceID.Get(); ok {
			overrides = append(overrides, ev)
			overridden[ev.uid] = append(overridden[ev.uid], rid)
			continue
		}
		events = append(events, ev)
	}

	for _, ev := range events {
		if ev.rrule == "" {
			entry, ok := toEntry(ev, ev.start, ev.end, singleID(ev.uid))
			if !ok {
				logger.Warn("Skipping event with empty range", zap.String("uid", ev.uid))
				result.Skipped++
				continue
			}
			result.Entries = append(result.Entries, entry)
			continue
		}

		// overridden instances come from their own VEVENT
		ev.exdates = append(ev.exdates, overridden[ev.uid]...)

		entries, truncated, err := expand(ev, opts)
		if err != nil {
			logger.Warn("Skipping recurring event", zap.String("uid", ev.uid), zap.String("rrule", ev.rrule), zap.Error(err))
			result.Skipped++
			continue
		}
		if truncated {
			result.Truncated = append(result.Truncated, ev.uid)
		}
		result.Entries = append(result.Entries, entries...)
	}

	for _, ov := range overrides {
		entry, ok := toEntry(ov, ov.start, ov.end, instanceID(ov.uid, ov.recurrenceID.MustGet()))
		if !ok {
			logger.Warn("Skipping override with empty range", zap.String("uid", ov.uid))
			result.Skipped++
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	logger.Info("Calendar loaded",
		zap.Int("entries", len(result.Entries)),
		zap.Int("skipped", result.Skipped),
		zap.Int("truncated", len(result.Truncated)))

	return result, nil
}

func parseEvent(ve *ical.VEvent, ctx dateutil.Context) (parsedEvent, error) {
	var ev parsedEvent
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return ev, errors.New("missing UID")
	}
	ev.uid = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.description = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("missing DTSTART")
	}
	ev.allDay = isDateValue(dtStart)

	if ev.allDay {
		start, err := parseDate(dtStart.Value, ctx)
		if err != nil {
			return ev, fmt.Errorf("bad DTSTART: %w", err)
		}
		ev.start = start
		ev.end = ctx.Date(start.Year(), start.Month(), start.Day()+1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseDate(dtEnd.Value, ctx); err == nil {
				ev.end = end
			}
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, fmt.Errorf("bad DTSTART: %w", err)
		}
		ev.start = start
		ev.end = start
		if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
			end, err := ve.GetEndAt()
			if err != nil {
				return ev, fmt.Errorf("bad DTEND: %w", err)
			}
			ev.end = end
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.rrule = p.Value
	}
	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		rid, err := parseInstant(p, ev.start.Location(), ctx)
		if err != nil {
			return ev, fmt.Errorf("bad RECURRENCE-ID: %w", err)
		}
		ev.recurrenceID = mo.Some(rid)
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseDateTime(strings.TrimSpace(part), ev.start.Location()); err == nil {
				ev.exdates = append(ev.exdates, t)
			}
		}
	}

	return ev, nil
}

func expand(ev parsedEvent, opts LoadOptions) ([]store.Entry, bool, error) {
	rule, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		return nil, false, err
	}
	rule.DTStart(ev.start)

	set := &rrule.Set{}
	set.RRule(rule)
	for _, ex := range ev.exdates {
		set.ExDate(ex.In(ev.start.Location()))
	}

	duration := ev.end.Sub(ev.start)
	// an occurrence overlapping the window may start before it
	from := opts.Window.Start.Add(-duration)
	starts := set.Between(from, opts.Window.End, true)

	truncated := false
	if len(starts) > opts.MaxOccurrences {
		starts = starts[:opts.MaxOccurrences]
		truncated = true
	}

	entries := make([]store.Entry, 0, len(starts))
	for _, start := range starts {
		end := start.Add(duration)
		if ev.allDay {
			end = opts.Context.AddDays(start, int(duration.Round(24*time.Hour)/(24*time.Hour)))
		}
		if entry, ok := toEntry(ev, start, end, instanceID(ev.uid, start)); ok {
			entries = append(entries, entry)
		}
	}
	return entries, truncated, nil
}

func toEntry(ev parsedEvent, start, end time.Time, id uuid.UUID) (store.Entry, bool) {
	if !end.After(start) {
		return store.Entry{}, false
	}

	description := mo.None[string]()
	if ev.description != "" {
		description = mo.Some(ev.description)
	}

	return store.Entry{
		ID:          id,
		Title:       ev.summary,
		Description: description,
		Start:       start,
		End:         end,
	}, true
}

// singleID keeps identifiers stable across reloads. Exported entries carry
// their UUID as UID, so a round trip preserves it.
func singleID(uid string) uuid.UUID {
	if id, err := uuid.Parse(uid); err == nil {
		return id
	}
	return uuid.NewSHA1(uidNamespace, []byte(uid))
}

// instanceID identifies one occurrence of a series by its original start,
// so an override keeps the identity of the instance it replaces.
func instanceID(uid string, originalStart time.Time) uuid.UUID {
	return uuid.NewSHA1(uidNamespace, []byte(uid+"|"+originalStart.UTC().Format(time.RFC3339)))
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseDate(v string, ctx dateutil.Context) (time.Time, error) {
	t, err := time.Parse("20060102", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}
	return ctx.Date(t.Year(), t.Month(), t.Day()), nil
}

// parseInstant reads a date or date-time property, honouring its TZID
func parseInstant(p *ical.IANAProperty, fallback *time.Location, ctx dateutil.Context) (time.Time, error) {
	if isDateValue(p) {
		return parseDate(p.Value, ctx)
	}
	loc := fallback
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if l, err := time.LoadLocation(tzs[0]); err == nil {
			loc = l
		}
	}
	return parseDateTime(strings.TrimSpace(p.Value), loc)
}

func parseDateTime(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
