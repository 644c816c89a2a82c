// Package ringbuffer provides a fixed-size sliding window over a
// conceptually infinite sequence. Items are never stored; each slot is
// computed on demand from its logical offset relative to the anchor.
package ringbuffer

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned for sizes that are even or smaller than 3
var ErrInvalidSize = errors.New("ring buffer size must be odd and >= 3")

// RingBuffer keeps `size` slots centered on centerOffset. For size 3 the
// slots hold the items at offsets centerOffset-1, centerOffset and
// centerOffset+1.
type RingBuffer[T any] struct {
	anchor       T
	size         int
	calculate    func(offset int) T
	centerOffset int
}

// New creates a buffer around anchor. calculate maps a logical offset from
// the anchor to its item and must be pure; calculate(0) is the anchor.
func New[T any](anchor T, size int, calculate func(offset int) T) (*RingBuffer[T], error) {
	if size < 3 || size%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if calculate == nil {
		return nil, errors.New("ring buffer needs an item generator")
	}

	return &RingBuffer[T]{
		anchor:    anchor,
		size:      size,
		calculate: calculate,
	}, nil
}

func (rb *RingBuffer[T]) Anchor() T { return rb.anchor }
func (rb *RingBuffer[T]) Size() int { return rb.size }
func (rb *RingBuffer[T]) MinIndex() int { return 0 }
func (rb *RingBuffer[T]) MaxIndex() int { return rb.size - 1 }
func (rb *RingBuffer[T]) CenterIndex() int { return rb.size / 2 }

// CenterOffset is how many units the center slot has moved from the anchor
func (rb *RingBuffer[T]) CenterOffset() int { return rb.centerOffset }

// ClampIndex pins index to [MinIndex, MaxIndex]
func (rb *RingBuffer[T]) ClampIndex(index int) int {
	return max(rb.MinIndex(), min(rb.MaxIndex(), index))
}

// Item returns the item in slot index. Out of range indexes are clamped to
// the nearest edge slot.
func (rb *RingBuffer[T]) Item(index int) T {
	index = rb.ClampIndex(index)
	return rb.calculate(rb.centerOffset + index - rb.CenterIndex())
}

// Items returns every slot from MinIndex to MaxIndex
func (rb *RingBuffer[T]) Items() []T {
	items := make([]T, rb.size)
	for i := range items {
		items[i] = rb.Item(i)
	}
	return items
}

// Move slides the window by delta units. Any delta is allowed.
func (rb *RingBuffer[T]) Move(delta int) {
	if delta == 0 {
		return
	}
	rb.centerOffset += delta
}

// ShiftDelta decides whether a visual index change should slide the window.
// Landing on the first slot shifts back by one, landing on the last shifts
// forward by one; anything else is absorbed without a shift (ok == false).
func (rb *RingBuffer[T]) ShiftDelta(oldIndex, newIndex int) (delta int, ok bool) {
	if oldIndex == newIndex {
		return 0, false
	}

	switch rb.ClampIndex(newIndex) {
	case rb.MinIndex():
		return -1, true
	case rb.MaxIndex():
		return 1, true
	default:
		return 0, false
	}
}
