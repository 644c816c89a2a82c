package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/username/daybook/internal/store"
)

const productID = "-//daybook//calendar export//EN"

// Export writes entries as a VCALENDAR, one VEVENT per entry with the entry
// ID as UID. Times are written in UTC.
func Export(w io.Writer, entries []store.Entry, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range entries {
		addEvent(cal, e, stamp)
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, e store.Entry, stamp time.Time) {
	ev := cal.AddEvent(e.ID.String())
	ev.SetDtStampTime(stamp.UTC())
	ev.SetStartAt(e.Start.UTC())
	ev.SetEndAt(e.End.UTC())
	ev.SetSummary(e.Title)
	if desc, ok := e.Description.Get(); ok {
		ev.SetDescription(desc)
	}
}
