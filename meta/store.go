package meta

import (
	"fmt"
	"sort"
)

// Store is an id-keyed collection of shared metadata entries.
//
// Ids assigned by the store form a strictly increasing sequence starting at 1
// and are never reassigned or reused. An entry added with an explicit id
// reserves that id; later automatic assignments skip past it. There is no
// removal: the store owns the authoritative set that becomes the file's
// catalog.
//
// Store is not safe for concurrent mutation; senfile's single-writer model
// (see the package docs of the root package) serializes access.
type Store struct {
	nextID  uint32
	entries map[uint32]Entry
	ids     []uint32 // ascending
}

// NewStore creates an empty store with id assignment starting at 1.
func NewStore() *Store {
	return &Store{
		nextID:  1,
		entries: make(map[uint32]Entry),
	}
}

// Add inserts the entry as shared and returns its id.
//
// An entry with id 0 gets the next sequential id assigned. An entry carrying
// an explicit id keeps it, and the store treats that id as taken from now on.
// Adding a second entry under an already taken id is an invalid argument.
func (s *Store) Add(e Entry) (uint32, error) {
	if e == nil {
		return 0, fmt.Errorf("meta: add nil entry")
	}

	id := e.ID()
	if id == 0 {
		id = s.nextID
		e.SetID(id)
	} else if _, taken := s.entries[id]; taken {
		return 0, fmt.Errorf("meta: metadata id %d already taken", id)
	}

	if id >= s.nextID {
		s.nextID = id + 1
	}

	s.entries[id] = e
	s.insertID(id)

	return id, nil
}

func (s *Store) insertID(id uint32) {
	// Ids almost always arrive in ascending order; the sort is for the
	// explicit-id case.
	s.ids = append(s.ids, id)
	if n := len(s.ids); n > 1 && s.ids[n-2] > id {
		sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	}
}

// Get returns the entry with the given id, or nil if absent.
func (s *Store) Get(id uint32) Entry {
	return s.entries[id]
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// All returns the entries in ascending id order. The returned slice is owned
// by the caller; the entries are shared.
func (s *Store) All() []Entry {
	out := make([]Entry, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.entries[id])
	}
	return out
}

// First returns the entry with the lowest id whose content converts to K.
//
// "First" is a deterministic tie-break by id order, nothing more; callers
// that need one specific entry must track its id.
func First[K Entry](s *Store) (K, bool) {
	for _, id := range s.ids {
		if k, ok := As[K](s.entries[id]); ok {
			return k, true
		}
	}
	var zero K
	return zero, false
}

// Find returns every entry convertible to K, in ascending id order. Each
// element is a new owned instance carrying its catalog id.
func Find[K Entry](s *Store) []K {
	var out []K
	for _, id := range s.ids {
		if k, ok := As[K](s.entries[id]); ok {
			out = append(out, k)
		}
	}
	return out
}

// Count returns the number of entries whose declared tag equals K's tag.
// Unlike Find it never decodes, so reference entries with corrupt buffers
// still count.
func Count[K Entry](s *Store) int {
	tag := TagOf[K]()
	n := 0
	for _, e := range s.entries {
		if e.Type() == tag {
			n++
		}
	}
	return n
}
