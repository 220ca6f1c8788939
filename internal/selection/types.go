package selection

import (
	"errors"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

var (
	// ErrDuplicateSelection is returned when an item with the same variant key is already selected
	ErrDuplicateSelection = errors.New("selection: duplicate selection")
	// ErrMaxItemsExceeded is returned when a list selection is already at capacity
	ErrMaxItemsExceeded = errors.New("selection: max items exceeded")
	// ErrInvalidItem is returned for items without an id
	ErrInvalidItem = errors.New("selection: item has no id")
)

// Entry is one selected item with its insertion sequence number
type Entry struct {
	Item  domain.Item
	Order uint64
}

// Key returns the entry's variant key
func (e Entry) Key() string {
	return e.Item.Key()
}

// ChangeKind describes what a mutation did
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeAdded
	ChangeReplaced
	ChangeRemoved
	ChangeCleared
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeReplaced:
		return "replaced"
	case ChangeRemoved:
		return "removed"
	case ChangeCleared:
		return "cleared"
	default:
		return "none"
	}
}

// Change is the result of a mutation, consumed by the field binding to decide
// whether the stored value must be reconciled
type Change struct {
	Kind     ChangeKind
	Entry    Entry   // the added or removed entry
	Replaced []Entry // entries evicted by a replacement or a clear
	Len      int     // selection size after the mutation
}

// Changed reports whether the mutation altered the set
func (c Change) Changed() bool {
	return c.Kind != ChangeNone
}

// Added returns the variant keys that entered the set
func (c Change) Added() []string {
	switch c.Kind {
	case ChangeAdded, ChangeReplaced:
		return []string{c.Entry.Key()}
	default:
		return nil
	}
}

// Removed returns the variant keys that left the set
func (c Change) Removed() []string {
	var out []string
	if c.Kind == ChangeRemoved {
		out = append(out, c.Entry.Key())
	}
	for _, e := range c.Replaced {
		out = append(out, e.Key())
	}
	return out
}
