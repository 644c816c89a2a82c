package store

import (
	"time"

	"github.com/samber/mo"

	"github.com/username/daybook/pkg/dateutil"
)

type sampleEvent struct {
	title       string
	description string
	dayOffset   int
	hour        int
	minute      int
	duration    time.Duration
}

var sampleEvents = []sampleEvent{
	{"Daily Standup", "Quick sync with the mobile team.", 0, 9, 0, 30 * time.Minute},
	{"Product Design Review", "Review latest designs with the design org.", 0, 11, 0, 75 * time.Minute},
	{"Client Check-In", "Weekly status update with the client.", 1, 14, 30, 45 * time.Minute},
	{"Growth Strategy Workshop", "Cross-functional roadmap planning.", 2, 10, 0, 2 * time.Hour},
	{"Hack Day", "Heads-down experimentation time for the whole team.", 3, 9, 0, 8 * time.Hour},
	{"Team Social", "Dinner with the office.", 5, 18, 0, 150 * time.Minute},
	{"Launch Prep", "Finalize assets ahead of the release.", 6, 16, 0, 90 * time.Minute},
	{"Wellness Day", "Company-wide day off to recharge.", 7, 0, 0, 24 * time.Hour},
}

// SampleEntries returns a demo agenda spread over the week starting at the
// local day containing reference, sorted by start time.
func SampleEntries(reference time.Time, ctx dateutil.Context) []Entry {
	today := ctx.StartOfDay(reference)

	entries := make([]Entry, 0, len(sampleEvents))
	for _, ev := range sampleEvents {
		start := ctx.Normalize(ctx.AddDays(today, ev.dayOffset), ev.hour, ev.minute)
		entries = append(entries, NewEntry(ev.title, mo.Some(ev.description), start, start.Add(ev.duration)))
	}

	return New(nil, entries...).Entries()
}
