package domain

import (
	"fmt"
	"strings"
)

// Item represents a catalog entry that can be picked into a field
type Item struct {
	ID          string
	DisplayName string
	VariantKey  string // uniqueness key inside a selection, defaults to ID
	ImageURL    string // optional
}

// Key returns the variant key, falling back to the item id when the
// provider has no sub-variant concept
func (i Item) Key() string {
	if i.VariantKey != "" {
		return i.VariantKey
	}
	return i.ID
}

// Category represents one node of the provider's category tree
type Category struct {
	ID       string
	Name     string
	Slug     string
	Children []Category
}

// FlatCategory is a category tree node flattened for list display
type FlatCategory struct {
	ID    string
	Name  string
	Slug  string
	Label string // "(slug) name"
}

// QueryKind tells keyword searches apart from category listings
type QueryKind int

const (
	QueryEmpty QueryKind = iota
	QueryKeyword
	QueryCategory
)

func (k QueryKind) String() string {
	switch k {
	case QueryKeyword:
		return "keyword"
	case QueryCategory:
		return "category"
	default:
		return "empty"
	}
}

// Query identifies a search. It is comparable, so == is structural equality.
type Query struct {
	Keyword  string
	Category string
}

// KeywordQuery builds a keyword search
func KeywordQuery(keyword string) Query {
	return Query{Keyword: strings.TrimSpace(keyword)}
}

// CategoryQuery builds a category listing
func CategoryQuery(categoryID string) Query {
	return Query{Category: categoryID}
}

// Kind reports which kind of search the query is. Category wins when both
// fields are set.
func (q Query) Kind() QueryKind {
	switch {
	case q.Category != "":
		return QueryCategory
	case q.Keyword != "":
		return QueryKeyword
	default:
		return QueryEmpty
	}
}

func (q Query) String() string {
	switch q.Kind() {
	case QueryCategory:
		return "category:" + q.Category
	case QueryKeyword:
		return "keyword:" + q.Keyword
	default:
		return "<empty>"
	}
}

// Mode is the shape contract of the value persisted in the field store
type Mode int

const (
	ModeSingle Mode = iota
	ModeSingleList
	ModeKeyed
	ModeKeyedList
)

// Modes lists every mode in declaration order
func Modes() []Mode {
	return []Mode{ModeSingle, ModeSingleList, ModeKeyed, ModeKeyedList}
}

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeSingleList:
		return "single-list"
	case ModeKeyed:
		return "keyed"
	case ModeKeyedList:
		return "keyed-list"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// IsList reports whether the mode holds any number of entries
func (m Mode) IsList() bool {
	return m == ModeSingleList || m == ModeKeyedList
}

// IsKeyed reports whether the mode carries a variant alongside the id
func (m Mode) IsKeyed() bool {
	return m == ModeKeyed || m == ModeKeyedList
}

// Valid reports whether m is one of the declared modes
func (m Mode) Valid() bool {
	return m >= ModeSingle && m <= ModeKeyedList
}

// ParseMode parses the configuration spelling of a mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ModeSingle, nil
	case "single-list", "singlelist", "list":
		return ModeSingleList, nil
	case "keyed":
		return ModeKeyed, nil
	case "keyed-list", "keyedlist":
		return ModeKeyedList, nil
	default:
		return 0, fmt.Errorf("unknown field mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so modes round-trip through config files
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid field mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
