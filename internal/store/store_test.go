package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/pkg/dateutil"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func titles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func requireSorted(t *testing.T, s *Store) {
	t.Helper()
	entries := s.Entries()
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].Start.Before(entries[i-1].Start),
			"entries out of order at %d: %v before %v", i, entries[i-1].Start, entries[i].Start)
	}
}

func TestNew_SortsSeedEntries(t *testing.T) {
	late := NewEntry("Late", mo.None[string](), utc(2025, 1, 2, 9, 0), utc(2025, 1, 2, 10, 0))
	early := NewEntry("Early", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))

	s := New(nil, late, early, late)

	assert.Equal(t, []string{"Early", "Late"}, titles(s.Entries()))
	assert.Equal(t, 2, s.Len())
}

func TestNew_DropsInvalidRanges(t *testing.T) {
	good := NewEntry("Good", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))
	empty := NewEntry("Empty", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 9, 0))
	inverted := NewEntry("Inverted", mo.None[string](), utc(2025, 1, 2, 10, 0), utc(2025, 1, 2, 9, 0))

	s := New(nil, inverted, good, empty)

	assert.Equal(t, []string{"Good"}, titles(s.Entries()))
	assert.Empty(t, s.EntriesOn(utc(2025, 1, 2, 12, 0), dateutil.UTC()))
}

func TestAdd_SortsAndReturns(t *testing.T) {
	s := New(nil)

	e1, err := s.Add("Late", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))
	require.NoError(t, err)
	e0, err := s.Add("Early", mo.Some("before midnight"), utc(2024, 12, 31, 22, 0), utc(2024, 12, 31, 23, 0))
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, e0.ID, entries[0].ID)
	assert.Equal(t, e1.ID, entries[1].ID)
	assert.Equal(t, "Late", e1.Title)
	assert.Equal(t, "before midnight", e0.Description.OrEmpty())
	assert.NotEqual(t, e0.ID, e1.ID)
}

func TestAdd_InvalidRange(t *testing.T) {
	s := New(nil)
	start := utc(2025, 1, 1, 10, 0)

	_, err := s.Add("Zero", mo.None[string](), start, start)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = s.Add("Inverted", mo.None[string](), start, start.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	assert.Zero(t, s.Len())
	assert.Zero(t, s.Version())
}

func TestUpdate_ReplacesAndResorts(t *testing.T) {
	s := New(nil)
	a, err := s.Add("A", mo.None[string](), utc(2025, 1, 2, 12, 0), utc(2025, 1, 2, 13, 0))
	require.NoError(t, err)
	_, err = s.Add("B", mo.None[string](), utc(2025, 1, 3, 12, 0), utc(2025, 1, 3, 13, 0))
	require.NoError(t, err)

	updated := a
	updated.Title = "A2"
	updated.Start = utc(2025, 1, 4, 9, 0)
	updated.End = utc(2025, 1, 4, 10, 0)
	require.NoError(t, s.Update(updated))

	assert.Equal(t, []string{"B", "A2"}, titles(s.Entries()))

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "A2", got.Title)
}

func TestUpdate_Errors(t *testing.T) {
	s := New(nil)
	entry, err := s.Add("Valid", mo.None[string](), utc(2025, 6, 1, 8, 0), utc(2025, 6, 1, 9, 0))
	require.NoError(t, err)
	version := s.Version()

	collapsed := entry
	collapsed.End = collapsed.Start
	assert.ErrorIs(t, s.Update(collapsed), ErrInvalidDateRange)

	ghost := NewEntry("Ghost", mo.None[string](), utc(2025, 1, 5, 9, 0), utc(2025, 1, 5, 10, 0))
	assert.ErrorIs(t, s.Update(ghost), ErrEntryNotFound)

	// invalid range wins over a missing id
	ghost.End = ghost.Start
	assert.ErrorIs(t, s.Update(ghost), ErrInvalidDateRange)

	got, _ := s.Get(entry.ID)
	assert.Equal(t, entry.End, got.End)
	assert.Equal(t, version, s.Version())
}

func TestRemove(t *testing.T) {
	s := New(nil)
	e, err := s.Add("ToRemove", mo.None[string](), utc(2025, 2, 1, 9, 0), utc(2025, 2, 1, 10, 0))
	require.NoError(t, err)

	require.NoError(t, s.Remove(e.ID))
	assert.Zero(t, s.Len())

	assert.ErrorIs(t, s.Remove(e.ID), ErrEntryNotFound)
	assert.ErrorIs(t, s.Remove(uuid.New()), ErrEntryNotFound)
}

func TestSortIsStableForEqualStarts(t *testing.T) {
	s := New(nil)
	start := utc(2025, 4, 1, 9, 0)

	first, err := s.Add("first", mo.None[string](), start, start.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Add("second", mo.None[string](), start, start.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = s.Add("third", mo.None[string](), start, start.Add(3*time.Hour))
	require.NoError(t, err)
	_, err = s.Add("earlier", mo.None[string](), start.Add(-time.Hour), start)
	require.NoError(t, err)

	assert.Equal(t, []string{"earlier", "first", "second", "third"}, titles(s.Entries()))

	// updating in place keeps the slot among equal starts
	first.Title = "first*"
	require.NoError(t, s.Update(first))
	assert.Equal(t, []string{"earlier", "first*", "second", "third"}, titles(s.Entries()))
}

func TestSortInvariantAcrossMutations(t *testing.T) {
	s := New(nil)
	base := utc(2025, 5, 1, 0, 0)
	offsets := []int{7, 3, 11, 0, 5, 3, 9, 1}

	var added []Entry
	for i, h := range offsets {
		e, err := s.Add("e", mo.None[string](), base.Add(time.Duration(h)*time.Hour), base.Add(time.Duration(h+1)*time.Hour))
		require.NoError(t, err)
		added = append(added, e)
		requireSorted(t, s)

		if i%2 == 1 {
			moved := added[i/2]
			moved.Start = moved.Start.Add(-time.Duration(i) * time.Hour)
			moved.End = moved.Start.Add(30 * time.Minute)
			require.NoError(t, s.Update(moved))
			requireSorted(t, s)
		}
	}
}

func TestEntriesOn_BoundaryRules(t *testing.T) {
	ctx := dateutil.UTC()
	s := New(nil)
	day := utc(2025, 3, 10, 0, 0)

	add := func(title string, start, end time.Time) {
		_, err := s.Add(title, mo.None[string](), start, end)
		require.NoError(t, err)
	}
	add("E0", utc(2025, 3, 9, 23, 0), day)
	add("E1", utc(2025, 3, 11, 0, 0), utc(2025, 3, 11, 1, 0))
	add("E2", utc(2025, 3, 10, 9, 0), utc(2025, 3, 10, 10, 0))
	add("E3", utc(2025, 3, 9, 12, 0), utc(2025, 3, 11, 12, 0))

	assert.ElementsMatch(t, []string{"E2", "E3"}, titles(s.EntriesOn(day, ctx)))
	assert.ElementsMatch(t, []string{"E2", "E3"}, titles(s.EntriesOn(utc(2025, 3, 10, 18, 0), ctx)))
}

func TestEntriesOn_UsesLocalDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("timezone not available: %v", err)
	}
	ctx := dateutil.Context{Location: tokyo, FirstWeekday: time.Monday}
	s := New(nil)

	// 20:00 UTC on the 9th is 05:00 on the 10th in Tokyo
	_, err = s.Add("early", mo.None[string](), utc(2025, 3, 9, 20, 0), utc(2025, 3, 9, 21, 0))
	require.NoError(t, err)

	assert.Len(t, s.EntriesOn(time.Date(2025, 3, 10, 12, 0, 0, 0, tokyo), ctx), 1)
	assert.Empty(t, s.EntriesOn(time.Date(2025, 3, 9, 12, 0, 0, 0, tokyo), ctx))
	assert.Len(t, s.EntriesOn(utc(2025, 3, 9, 12, 0), dateutil.UTC()), 1)
}

func TestDays(t *testing.T) {
	ctx := dateutil.UTC()
	s := New(nil)
	_, err := s.Add("overnight", mo.None[string](), utc(2025, 3, 10, 22, 0), utc(2025, 3, 11, 2, 0))
	require.NoError(t, err)
	_, err = s.Add("lunch", mo.None[string](), utc(2025, 3, 12, 12, 0), utc(2025, 3, 12, 13, 0))
	require.NoError(t, err)

	days := s.Days(utc(2025, 3, 10, 15, 0), 4, ctx)
	require.Len(t, days, 4)

	assert.Equal(t, "2025-03-10", days[0].Day.String())
	assert.Equal(t, "2025-03-13", days[3].Day.String())
	assert.Equal(t, []string{"overnight"}, titles(days[0].Entries))
	assert.Equal(t, []string{"overnight"}, titles(days[1].Entries))
	assert.Equal(t, []string{"lunch"}, titles(days[2].Entries))
	assert.Empty(t, days[3].Entries)

	assert.Empty(t, s.Days(utc(2025, 3, 10, 0, 0), 0, ctx))
	assert.Empty(t, s.Days(utc(2025, 3, 10, 0, 0), -3, ctx))
}

func TestMonths(t *testing.T) {
	ctx := dateutil.UTC()
	s := New(nil)

	months := s.Months(utc(2025, 11, 20, 0, 0), 3, ctx)
	require.Len(t, months, 3)
	assert.Equal(t, "November 2025", months[0].String())
	assert.Equal(t, "December 2025", months[1].String())
	assert.Equal(t, "January 2026", months[2].String())

	assert.Empty(t, s.Months(utc(2025, 11, 20, 0, 0), 0, ctx))
}

func TestMonthEntries(t *testing.T) {
	ctx := dateutil.UTC()
	s := New(nil)
	_, err := s.Add("review", mo.None[string](), utc(2025, 2, 28, 23, 0), utc(2025, 3, 1, 1, 0))
	require.NoError(t, err)

	feb, err := calendar.MonthOf(2025, time.February, ctx)
	require.NoError(t, err)

	days := s.MonthEntries(feb)
	require.Len(t, days, 28)
	assert.Equal(t, []string{"review"}, titles(days[27].Entries))
	assert.Empty(t, days[0].Entries)
}

func TestSubscribe(t *testing.T) {
	s := New(nil)

	var changes []Change
	cancel := s.Subscribe(func(c Change) { changes = append(changes, c) })

	e, err := s.Add("a", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))
	require.NoError(t, err)
	e.Title = "b"
	require.NoError(t, s.Update(e))
	_, err = s.Add("bad", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 9, 0))
	require.Error(t, err)
	require.NoError(t, s.Remove(e.ID))

	require.Len(t, changes, 3)
	assert.Equal(t, ChangeAdded, changes[0].Kind)
	assert.Equal(t, ChangeUpdated, changes[1].Kind)
	assert.Equal(t, "b", changes[1].Entry.Title)
	assert.Equal(t, ChangeRemoved, changes[2].Kind)
	assert.Equal(t, uint64(3), changes[2].Version)
	assert.Equal(t, uint64(3), s.Version())

	cancel()
	_, err = s.Add("c", mo.None[string](), utc(2025, 1, 2, 9, 0), utc(2025, 1, 2, 10, 0))
	require.NoError(t, err)
	assert.Len(t, changes, 3)
	assert.Equal(t, uint64(4), s.Version())
}

func TestSubscribe_NotifiesInRegistrationOrder(t *testing.T) {
	s := New(nil)

	var order []int
	cancels := make([]func(), 0, 5)
	for i := 0; i < 5; i++ {
		cancels = append(cancels, s.Subscribe(func(Change) { order = append(order, i) }))
	}
	cancels[2]()

	for round := 0; round < 3; round++ {
		order = order[:0]
		_, err := s.Add("a", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 3, 4}, order)
	}

	// cancelling twice is harmless
	cancels[2]()
	order = order[:0]
	s.Replace(nil)
	assert.Equal(t, []int{0, 1, 3, 4}, order)
}

func TestReplace(t *testing.T) {
	s := New(nil)
	_, err := s.Add("old", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))
	require.NoError(t, err)

	good := NewEntry("good", mo.None[string](), utc(2025, 1, 3, 9, 0), utc(2025, 1, 3, 10, 0))
	earlier := NewEntry("earlier", mo.None[string](), utc(2025, 1, 2, 9, 0), utc(2025, 1, 2, 10, 0))
	bad := NewEntry("bad", mo.None[string](), utc(2025, 1, 2, 9, 0), utc(2025, 1, 2, 9, 0))

	skipped := s.Replace([]Entry{good, bad, earlier, good})

	assert.Equal(t, 2, skipped)
	assert.Equal(t, []string{"earlier", "good"}, titles(s.Entries()))
}

func TestEntriesReturnsCopy(t *testing.T) {
	s := New(nil)
	_, err := s.Add("a", mo.None[string](), utc(2025, 1, 1, 9, 0), utc(2025, 1, 1, 10, 0))
	require.NoError(t, err)

	entries := s.Entries()
	entries[0].Title = "mutated"

	assert.Equal(t, "a", s.Entries()[0].Title)
}

func TestSampleEntries(t *testing.T) {
	ctx := dateutil.UTC()
	ref := utc(2025, 3, 10, 15, 0)

	entries := SampleEntries(ref, ctx)
	require.Len(t, entries, 8)

	s := New(nil, entries...)
	requireSorted(t, s)
	assert.Len(t, s.EntriesOn(ref, ctx), 2)
	for _, e := range entries {
		assert.True(t, e.End.After(e.Start), e.Title)
	}
}
