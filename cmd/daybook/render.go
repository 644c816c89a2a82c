package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/internal/pager"
	"github.com/username/daybook/internal/store"
	"github.com/username/daybook/pkg/dateutil"
)

func formatEntry(e store.Entry, ctx dateutil.Context) string {
	start, end := ctx.In(e.Start), ctx.In(e.End)

	span := fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
	if !ctx.IsSameDay(start, end) {
		span = fmt.Sprintf("%s %s - %s %s",
			start.Format("01-02"), start.Format("15:04"),
			end.Format("01-02"), end.Format("15:04"))
	}

	line := fmt.Sprintf("%s  %s", span, e.Title)
	if desc, ok := e.Description.Get(); ok {
		line += "  (" + desc + ")"
	}
	return line
}

func dayHeader(d calendar.Day) string {
	header := d.Start().Format("Mon 2006-01-02")
	if dateutil.IsWeekend(d.Start()) {
		header += "  weekend"
	}
	return header
}

func printAgenda(w io.Writer, days []store.DayEntries, ctx dateutil.Context) {
	for _, de := range days {
		fmt.Fprintln(w, dayHeader(de.Day))
		if len(de.Entries) == 0 {
			fmt.Fprintln(w, "  -")
			continue
		}
		for _, e := range de.Entries {
			fmt.Fprintf(w, "  %s\n", formatEntry(e, ctx))
		}
	}
}

func printDayPages(w io.Writer, p *pager.Pager[calendar.Day], st *store.Store) {
	for i, day := range p.Window() {
		marker := " "
		if i == p.CurrentIndex() {
			marker = ">"
		}
		entries := st.EntriesOn(day.Start(), day.Context())
		fmt.Fprintf(w, "%s %s  %d event(s)\n", marker, dayHeader(day), len(entries))
	}
}

func printMonthPages(w io.Writer, p *pager.Pager[calendar.Month], st *store.Store) {
	for i, month := range p.Window() {
		marker := " "
		if i == p.CurrentIndex() {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %-16s %d event(s)\n", marker, month.String(), countEvents(st.MonthEntries(month)))
	}
}

// countEvents counts distinct entries, multi-day events count once
func countEvents(days []store.DayEntries) int {
	seen := make(map[string]struct{})
	for _, de := range days {
		for _, e := range de.Entries {
			seen[e.ID.String()] = struct{}{}
		}
	}
	return len(seen)
}

func printMonthSummary(w io.Writer, m calendar.Month, days []store.DayEntries) {
	busy := 0
	var hours time.Duration
	for _, de := range days {
		if len(de.Entries) > 0 {
			busy++
		}
		for _, e := range de.Entries {
			if overlap, ok := de.Day.Interval().Intersection(calendar.Interval{Start: e.Start, End: e.End}); ok {
				hours += overlap.Duration()
			}
		}
	}

	fmt.Fprintf(w, "%-16s %2d days, %2d busy, %3d event(s), %5.1fh booked\n",
		m.String(), m.NumberOfDays(), busy, countEvents(days), hours.Hours())
}

func printGrid(w io.Writer, m calendar.Month, days []store.DayEntries) {
	counts := make(map[string]int, len(days))
	for _, de := range days {
		counts[de.Day.String()] = len(de.Entries)
	}

	fmt.Fprintln(w, m.String())

	weeks := m.GridWeeks()
	if len(weeks) == 0 {
		return
	}
	names := make([]string, 0, 7)
	for _, d := range weeks[0] {
		names = append(names, fmt.Sprintf("%-5s", d.Start().Format("Mon")))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(names, " "), " "))

	for _, week := range weeks {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			if !m.Contains(d.Start()) {
				cells = append(cells, "  .  ")
				continue
			}
			cell := fmt.Sprintf("%2d", d.Start().Day())
			if n := counts[d.String()]; n > 0 {
				cell += fmt.Sprintf("*%-2d", n)
			} else {
				cell += "   "
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))
	}
}

// sampleSource feeds the daemon the built-in events
type sampleSource struct {
	dateCtx dateutil.Context
}

func (s sampleSource) Load(ctx context.Context, now time.Time) ([]store.Entry, error) {
	return store.SampleEntries(now, s.dateCtx), nil
}
