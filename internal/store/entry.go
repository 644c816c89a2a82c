package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Entry is a titled, time-ranged calendar event. Start and End are absolute
// instants; they are not bucketed to local days.
type Entry struct {
	ID          uuid.UUID
	Title       string
	Description mo.Option[string]
	Start       time.Time
	End         time.Time
}

// NewEntry builds an entry with a fresh identifier. It does not validate
// the range; the store does that on mutation.
func NewEntry(title string, description mo.Option[string], start, end time.Time) Entry {
	return Entry{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Start:       start,
		End:         end,
	}
}

// Duration returns End - Start
func (e Entry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

func (e Entry) validRange() bool {
	return e.End.After(e.Start)
}
