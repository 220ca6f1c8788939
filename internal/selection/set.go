// Package selection holds the ordered, deduplicated, cardinality-bounded set
// of items picked into a field.
package selection

import (
	"fmt"
	"iter"
	"slices"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// Set is the selection of one widget instance. It is not safe for concurrent
// use; the owning binding serializes access.
//
// Invariants: variant keys are pairwise distinct, single-cardinality modes
// hold at most one entry, and list modes never exceed maxItems when it is set.
// Add is the only way in, so no other code can break them.
type Set struct {
	mode      domain.Mode
	maxItems  int
	entries   []Entry // copy-on-remove so List snapshots stay stable
	nextOrder uint64
}

// Option configures a Set
type Option func(*Set)

// WithMaxItems bounds list-shaped selections. Zero means unbounded.
func WithMaxItems(n int) Option {
	return func(s *Set) {
		s.maxItems = n
	}
}

// New creates an empty selection for mode
func New(mode domain.Mode, opts ...Option) (*Set, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("selection: invalid mode %s", mode)
	}
	s := &Set{mode: mode}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxItems < 0 {
		return nil, fmt.Errorf("selection: max items must not be negative, got %d", s.maxItems)
	}
	return s, nil
}

// Mode returns the value shape the set is configured for
func (s *Set) Mode() domain.Mode {
	return s.mode
}

// MaxItems returns the configured bound, 0 when unbounded
func (s *Set) MaxItems() int {
	return s.maxItems
}

// Add selects item. Duplicates fail with ErrDuplicateSelection. In
// single-cardinality modes the sole entry is replaced. In list modes a full
// set fails with ErrMaxItemsExceeded. Failures never mutate the set.
func (s *Set) Add(item domain.Item) (Change, error) {
	if item.ID == "" {
		return Change{Len: len(s.entries)}, ErrInvalidItem
	}
	key := item.Key()
	if s.Contains(key) {
		return Change{Len: len(s.entries)}, fmt.Errorf("%w: %q", ErrDuplicateSelection, key)
	}

	entry := Entry{Item: item, Order: s.nextOrder}

	if !s.mode.IsList() {
		replaced := s.entries
		s.nextOrder++
		s.entries = []Entry{entry}
		kind := ChangeAdded
		if len(replaced) > 0 {
			kind = ChangeReplaced
		}
		return Change{Kind: kind, Entry: entry, Replaced: replaced, Len: 1}, nil
	}

	if s.Full() {
		return Change{Len: len(s.entries)}, fmt.Errorf("%w: limit is %d", ErrMaxItemsExceeded, s.maxItems)
	}
	s.nextOrder++
	s.entries = append(s.entries, entry)
	return Change{Kind: ChangeAdded, Entry: entry, Len: len(s.entries)}, nil
}

// Remove deselects the entry with the given variant key. Absent keys are a no-op.
func (s *Set) Remove(variantKey string) Change {
	i := s.index(variantKey)
	if i < 0 {
		return Change{Len: len(s.entries)}
	}
	removed := s.entries[i]
	s.entries = slices.Concat(s.entries[:i], s.entries[i+1:])
	return Change{Kind: ChangeRemoved, Entry: removed, Len: len(s.entries)}
}

// Clear deselects everything
func (s *Set) Clear() Change {
	if len(s.entries) == 0 {
		return Change{}
	}
	old := s.entries
	s.entries = nil
	return Change{Kind: ChangeCleared, Replaced: old}
}

// List yields the entries in insertion order. Each call starts over; a range
// over the sequence sees the set as it was when the range began.
func (s *Set) List() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		entries := s.entries
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Items returns the selected items in insertion order
func (s *Set) Items() []domain.Item {
	out := make([]domain.Item, 0, len(s.entries))
	for e := range s.List() {
		out = append(out, e.Item)
	}
	return out
}

// Keys returns the selected variant keys in insertion order
func (s *Set) Keys() []string {
	out := make([]string, 0, len(s.entries))
	for e := range s.List() {
		out = append(out, e.Key())
	}
	return out
}

// Len returns the number of selected entries
func (s *Set) Len() int {
	return len(s.entries)
}

// Contains reports whether an entry with the variant key is selected
func (s *Set) Contains(variantKey string) bool {
	return s.index(variantKey) >= 0
}

// Full reports whether a list-shaped set has reached its bound
func (s *Set) Full() bool {
	return s.mode.IsList() && s.maxItems > 0 && len(s.entries) >= s.maxItems
}

func (s *Set) index(variantKey string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.Key() == variantKey })
}
