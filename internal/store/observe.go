package store

import "slices"

// ChangeKind identifies the mutation behind a Change
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota + 1
	ChangeUpdated
	ChangeRemoved
	ChangeReplaced
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Change describes one successful mutation. Entry is zero for ChangeReplaced.
type Change struct {
	Kind    ChangeKind
	Entry   Entry
	Version uint64
}

// Version increases by one on every successful mutation. Pollers compare
// it against the last value they rendered.
func (s *Store) Version() uint64 {
	return s.version
}

type subscriber struct {
	id int
	fn func(Change)
}

// Subscribe registers fn to be called synchronously after each mutation,
// in registration order. The returned func unregisters it.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

func (s *Store) publish(kind ChangeKind, entry Entry) {
	s.version++
	change := Change{Kind: kind, Entry: entry, Version: s.version}
	for _, sub := range s.subscribers {
		sub.fn(change)
	}
}
