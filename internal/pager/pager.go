// Package pager turns page-change events from a swipeable view into moves
// of a ring buffer, so an endless day or month carousel only ever holds a
// few generated pages.
package pager

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/daybook/internal/calendar"
	"github.com/username/daybook/internal/ringbuffer"
	"github.com/username/daybook/pkg/dateutil"
)

// DefaultSize keeps previous, current and next pages
const DefaultSize = 3

// Pager tracks which slot of the window is on screen
type Pager[T any] struct {
	buffer  *ringbuffer.RingBuffer[T]
	current int
	logger  *zap.Logger
}

// New wraps buffer with the current page on its center slot
func New[T any](buffer *ringbuffer.RingBuffer[T], logger *zap.Logger) *Pager[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager[T]{
		buffer:  buffer,
		current: buffer.CenterIndex(),
		logger:  logger,
	}
}

// NewDayPager pages through days around anchor. The anchor is pinned to
// local noon before day arithmetic.
func NewDayPager(anchor time.Time, size int, ctx dateutil.Context, logger *zap.Logger) (*Pager[calendar.Day], error) {
	noon := ctx.Normalize(anchor, 12, 0)
	buffer, err := ringbuffer.New(calendar.NewDay(noon, ctx), size, func(offset int) calendar.Day {
		return calendar.NewDay(ctx.AddDays(noon, offset), ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create day pager: %w", err)
	}
	return New(buffer, logger), nil
}

// NewMonthPager pages through months around the month containing anchor
func NewMonthPager(anchor time.Time, size int, ctx dateutil.Context, logger *zap.Logger) (*Pager[calendar.Month], error) {
	first := calendar.NewMonth(anchor, ctx)
	buffer, err := ringbuffer.New(first, size, func(offset int) calendar.Month {
		return first.Adding(offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create month pager: %w", err)
	}
	return New(buffer, logger), nil
}

// HandlePageChange records a move of the visible page from oldIndex to
// newIndex. Reaching an edge slot slides the window one unit that way and
// puts the visible page back on the center slot. It reports whether the
// window moved.
func (p *Pager[T]) HandlePageChange(newIndex, oldIndex int) bool {
	delta, ok := p.buffer.ShiftDelta(oldIndex, newIndex)
	if !ok {
		p.current = p.buffer.ClampIndex(newIndex)
		return false
	}

	p.buffer.Move(delta)
	p.current = p.buffer.CenterIndex()

	p.logger.Debug("Pager window shifted",
		zap.Int("delta", delta),
		zap.Int("center_offset", p.buffer.CenterOffset()))

	return true
}

// Jump slides the window by delta units and shows the new center, e.g. to
// return to today from far away.
func (p *Pager[T]) Jump(delta int) {
	p.buffer.Move(delta)
	p.current = p.buffer.CenterIndex()
}

// Reset returns to the anchor
func (p *Pager[T]) Reset() {
	p.Jump(-p.buffer.CenterOffset())
}

func (p *Pager[T]) CurrentIndex() int { return p.current }

// Current returns the item on the visible slot
func (p *Pager[T]) Current() T { return p.buffer.Item(p.current) }

// Window returns all generated pages in slot order
func (p *Pager[T]) Window() []T { return p.buffer.Items() }

// CenterOffset is the distance of the center page from the anchor
func (p *Pager[T]) CenterOffset() int { return p.buffer.CenterOffset() }
