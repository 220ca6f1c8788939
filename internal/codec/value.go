// Package codec converts selections to and from the tagged value shapes kept
// in the field store.
package codec

import (
	"encoding/json"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
)

// Value is an immutable snapshot of a field value. The concrete type always
// matches the mode it was produced for.
type Value interface {
	Mode() domain.Mode
	IsEmpty() bool
	json.Marshaler
	sealed()
}

// KeyedRef is the wire record of keyed modes
type KeyedRef struct {
	ID      string `json:"id"`
	Variant string `json:"variant"`
}

// SingleValue is a bare item id
type SingleValue string

func (SingleValue) Mode() domain.Mode { return domain.ModeSingle }
func (v SingleValue) IsEmpty() bool   { return v == "" }
func (SingleValue) sealed()           {}

func (v SingleValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// SingleListValue is an ordered list of item ids
type SingleListValue []string

func (SingleListValue) Mode() domain.Mode { return domain.ModeSingleList }
func (v SingleListValue) IsEmpty() bool   { return len(v) == 0 }
func (SingleListValue) sealed()           {}

func (v SingleListValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(v))
}

// KeyedValue is a single id and variant record
type KeyedValue KeyedRef

func (KeyedValue) Mode() domain.Mode { return domain.ModeKeyed }
func (v KeyedValue) IsEmpty() bool   { return v.ID == "" }
func (KeyedValue) sealed()           {}

func (v KeyedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(KeyedRef(v))
}

// KeyedListValue is an ordered list of id and variant records
type KeyedListValue []KeyedRef

func (KeyedListValue) Mode() domain.Mode { return domain.ModeKeyedList }
func (v KeyedListValue) IsEmpty() bool   { return len(v) == 0 }
func (KeyedListValue) sealed()           {}

func (v KeyedListValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]KeyedRef(v))
}

// IsEmpty treats a nil Value as empty
func IsEmpty(v Value) bool {
	return v == nil || v.IsEmpty()
}

// Marshal renders v for the store. Nil values marshal to nil.
func Marshal(v Value) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return v.MarshalJSON()
}
