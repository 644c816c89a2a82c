// Package store keeps calendar entries ordered by start time and answers
// day and month queries against them.
//
// A Store has a single owner and does no locking; callers that mutate it
// from several goroutines must serialize access themselves.
package store

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/pkg/dateutil"
)

var (
	// ErrInvalidDateRange is returned when an entry does not end strictly after it starts
	ErrInvalidDateRange = errors.New("end date must be after start date")

	// ErrEntryNotFound is returned when no entry has the requested identifier
	ErrEntryNotFound = errors.New("calendar entry not found")
)

// DayEntries pairs a local day with the entries overlapping it
type DayEntries struct {
	Day     calendar.Day
	Entries []Entry
}

// Store is an in-memory, start-ordered collection of entries
type Store struct {
	entries     []Entry
	version     uint64
	subscribers []subscriber
	nextSubID   int
	logger      *zap.Logger
}

// New creates a store seeded with entries, sorted by start time. Entries
// that do not end after they start are dropped, and duplicate identifiers
// keep the first occurrence.
func New(logger *zap.Logger, entries ...Entry) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{logger: logger}

	seen := make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		if !e.validRange() {
			logger.Warn("Skipping entry with invalid range",
				zap.String("id", e.ID.String()),
				zap.Time("start", e.Start),
				zap.Time("end", e.End))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			logger.Warn("Skipping duplicate entry", zap.String("id", e.ID.String()))
			continue
		}
		seen[e.ID] = struct{}{}
		s.entries = append(s.entries, e)
	}
	s.sort()

	return s
}

// Entries returns a copy of all entries in start order
func (s *Store) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.entries)
}

// Get looks up an entry by identifier
func (s *Store) Get(id uuid.UUID) (Entry, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Add validates the range, assigns a fresh identifier and inserts the entry
func (s *Store) Add(title string, description mo.Option[string], start, end time.Time) (Entry, error) {
	entry := NewEntry(title, description, start, end)
	if !entry.validRange() {
		return Entry{}, ErrInvalidDateRange
	}

	s.entries = append(s.entries, entry)
	s.sort()

	s.logger.Debug("Entry added",
		zap.String("id", entry.ID.String()),
		zap.String("title", entry.Title),
		zap.Time("start", entry.Start),
		zap.Time("end", entry.End))

	s.publish(ChangeAdded, entry)
	return entry, nil
}

// Update replaces the entry with the same identifier and re-sorts
func (s *Store) Update(updated Entry) error {
	if !updated.validRange() {
		return ErrInvalidDateRange
	}

	i := s.indexOf(updated.ID)
	if i < 0 {
		return ErrEntryNotFound
	}

	s.entries[i] = updated
	s.sort()

	s.logger.Debug("Entry updated",
		zap.String("id", updated.ID.String()),
		zap.String("title", updated.Title))

	s.publish(ChangeUpdated, updated)
	return nil
}

// Remove deletes the entry with the given identifier
func (s *Store) Remove(id uuid.UUID) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrEntryNotFound
	}

	removed := s.entries[i]
	s.entries = slices.Delete(s.entries, i, i+1)

	s.logger.Debug("Entry removed", zap.String("id", id.String()))

	s.publish(ChangeRemoved, removed)
	return nil
}

// Replace swaps the whole entry set, used when a source is reloaded.
// Entries with invalid ranges are skipped and counted.
func (s *Store) Replace(entries []Entry) (skipped int) {
	next := make([]Entry, 0, len(entries))
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		if !e.validRange() {
			skipped++
			continue
		}
		if _, dup := seen[e.ID]; dup {
			skipped++
			continue
		}
		seen[e.ID] = struct{}{}
		next = append(next, e)
	}

	s.entries = next
	s.sort()

	s.logger.Info("Store replaced",
		zap.Int("entries", len(next)),
		zap.Int("skipped", skipped))

	s.publish(ChangeReplaced, Entry{})
	return skipped
}

// EntriesOn returns entries overlapping the local day that contains t
func (s *Store) EntriesOn(t time.Time, ctx dateutil.Context) []Entry {
	return s.entriesOnDay(calendar.NewDay(t, ctx))
}

func (s *Store) entriesOnDay(day calendar.Day) []Entry {
	var out []Entry
	dayEnd := day.End()
	for _, e := range s.entries {
		// entries are start-ordered, nothing later can overlap
		if !e.Start.Before(dayEnd) {
			break
		}
		if day.Overlaps(e.Start, e.End) {
			out = append(out, e)
		}
	}
	return out
}

// Days returns count consecutive days starting at the day containing from,
// each with its overlapping entries
func (s *Store) Days(from time.Time, count int, ctx dateutil.Context) []DayEntries {
	if count <= 0 {
		return nil
	}

	out := make([]DayEntries, 0, count)
	day := calendar.NewDay(from, ctx)
	for i := 0; i < count; i++ {
		out = append(out, DayEntries{Day: day, Entries: s.entriesOnDay(day)})
		day = day.Next()
	}
	return out
}

// Months returns count consecutive months starting at the month containing from.
// Months are structural; use MonthEntries to group entries by day.
func (s *Store) Months(from time.Time, count int, ctx dateutil.Context) []calendar.Month {
	if count <= 0 {
		return nil
	}

	out := make([]calendar.Month, 0, count)
	month := calendar.NewMonth(from, ctx)
	for i := 0; i < count; i++ {
		out = append(out, month)
		month = month.Next()
	}
	return out
}

// MonthEntries returns every day of the month with its overlapping entries
func (s *Store) MonthEntries(month calendar.Month) []DayEntries {
	days := month.Days()
	out := make([]DayEntries, len(days))
	for i, day := range days {
		out[i] = DayEntries{Day: day, Entries: s.entriesOnDay(day)}
	}
	return out
}

func (s *Store) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// sort orders by start; equal starts keep their current relative order
func (s *Store) sort() {
	slices.SortStableFunc(s.entries, func(a, b Entry) int {
		return a.Start.Compare(b.Start)
	})
}
