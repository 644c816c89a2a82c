package ics

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/internal/store"
	"github.com/username/daybook/pkg/dateutil"
)

// FileSource reads entries from an .ics file on disk, expanding
// recurrences WindowDays local days either side of the reference time.
type FileSource struct {
	Path       string
	WindowDays int
	Context    dateutil.Context
	Logger     *zap.Logger
}

// Window returns the expansion window around now
func (s *FileSource) Window(now time.Time) calendar.Interval {
	today := s.Context.StartOfDay(now)
	return calendar.Interval{
		Start: s.Context.AddDays(today, -s.WindowDays),
		End:   s.Context.AddDays(today, s.WindowDays+1),
	}
}

// Load reads the file and returns its entries. A missing file yields no
// entries so a new calendar can start empty.
func (s *FileSource) Load(ctx context.Context, now time.Time) ([]store.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	res, err := Load(f, LoadOptions{Window: s.Window(now), Context: s.Context}, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return res.Entries, nil
}

// Append adds one event to the file, keeping everything already in it.
// Recurring series stay unexpanded on disk.
func (s *FileSource) Append(entry store.Entry, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	data, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		cal, err = ical.ParseCalendar(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", s.Path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read calendar file: %w", err)
	}

	addEvent(cal, entry, now)

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".daybook-*.ics")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := cal.SerializeTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace calendar file: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("Event appended",
			zap.String("path", s.Path),
			zap.String("id", entry.ID.String()),
			zap.String("title", entry.Title))
	}
	return nil
}
