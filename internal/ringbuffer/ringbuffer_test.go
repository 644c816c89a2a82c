package ringbuffer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(offset int) int { return offset }

func mustNew[T any](t *testing.T, anchor T, size int, fn func(int) T) *RingBuffer[T] {
	t.Helper()
	rb, err := New(anchor, size, fn)
	require.NoError(t, err)
	return rb
}

func TestNew_ValidatesSize(t *testing.T) {
	for _, size := range []int{3, 5, 7, 101} {
		rb, err := New(0, size, identity)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, 0, rb.CenterOffset())
		assert.Equal(t, size/2, rb.CenterIndex())
		assert.Equal(t, size-1, rb.MaxIndex())
	}

	for _, size := range []int{-1, 0, 1, 2, 4, 6} {
		_, err := New(0, size, identity)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}

	_, err := New[int](0, 3, nil)
	assert.Error(t, err)
}

func TestItem_Centering(t *testing.T) {
	rb := mustNew(t, 0, 3, func(offset int) int { return offset * 10 })

	assert.Equal(t, -10, rb.Item(0))
	assert.Equal(t, 0, rb.Item(1))
	assert.Equal(t, 10, rb.Item(2))

	rb.Move(1)
	assert.Equal(t, 0, rb.Item(0))
	assert.Equal(t, 10, rb.Item(1))
	assert.Equal(t, 20, rb.Item(2))
}

func TestItem_Size5(t *testing.T) {
	rb := mustNew(t, 0, 5, func(offset int) int { return offset * 10 })
	assert.Equal(t, []int{-20, -10, 0, 10, 20}, rb.Items())
}

func TestItem_AnchorRelative(t *testing.T) {
	anchor := 100
	rb := mustNew(t, anchor, 3, func(offset int) int { return anchor + offset })

	assert.Equal(t, []int{99, 100, 101}, rb.Items())
	assert.Equal(t, 100, rb.Anchor())
}

func TestItem_ClampsOutOfRange(t *testing.T) {
	rb := mustNew(t, 0, 3, identity)

	assert.Equal(t, rb.Item(0), rb.Item(-5))
	assert.Equal(t, rb.Item(2), rb.Item(42))
}

func TestMove(t *testing.T) {
	tests := []struct {
		name   string
		deltas []int
		want   int
	}{
		{"forward", []int{1}, 1},
		{"backward", []int{-1}, -1},
		{"zero is a no-op", []int{0}, 0},
		{"accumulates", []int{3, -5, 10}, 8},
		{"large jumps", []int{-10}, -10},
		{"mixed with zeros", []int{0, 2, 0, -1, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := mustNew(t, 0, 3, identity)
			sum := 0
			for _, d := range tt.deltas {
				rb.Move(d)
				sum += d
			}
			assert.Equal(t, tt.want, rb.CenterOffset())
			assert.Equal(t, sum, rb.CenterOffset())
			assert.Equal(t, []int{tt.want - 1, tt.want, tt.want + 1}, rb.Items())
		})
	}
}

func TestMove_Size7Window(t *testing.T) {
	rb := mustNew(t, 0, 7, identity)
	assert.Equal(t, 0, rb.Item(3))

	rb.Move(5)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, rb.Items())

	rb.Move(-3)
	assert.Equal(t, []int{-1, 0, 1, 2, 3, 4, 5}, rb.Items())
}

func TestItem_StringGenerator(t *testing.T) {
	rb := mustNew(t, "base", 3, func(offset int) string { return fmt.Sprintf("item_%d", offset) })
	assert.Equal(t, []string{"item_-1", "item_0", "item_1"}, rb.Items())

	rb.Move(5)
	assert.Equal(t, []string{"item_4", "item_5", "item_6"}, rb.Items())
}

func TestClampIndex(t *testing.T) {
	rb := mustNew(t, 0, 5, identity)

	assert.Equal(t, 0, rb.ClampIndex(-3))
	assert.Equal(t, 2, rb.ClampIndex(2))
	assert.Equal(t, 4, rb.ClampIndex(9))
}

func TestShiftDelta(t *testing.T) {
	rb := mustNew(t, 0, 5, identity)

	tests := []struct {
		name      string
		from, to  int
		wantDelta int
		wantShift bool
	}{
		{"unchanged", 2, 2, 0, false},
		{"to first slot", 1, 0, -1, true},
		{"to last slot", 3, 4, 1, true},
		{"inside window", 2, 3, 0, false},
		{"past the start clamps", 1, -4, -1, true},
		{"past the end clamps", 3, 12, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, ok := rb.ShiftDelta(tt.from, tt.to)
			assert.Equal(t, tt.wantShift, ok)
			assert.Equal(t, tt.wantDelta, delta)
		})
	}
}
