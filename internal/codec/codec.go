package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/selection"
)

// ErrValueShapeMismatch is returned when a stored value does not have the
// shape of the configured mode
var ErrValueShapeMismatch = errors.New("codec: value shape does not match mode")

// ShapeError describes a shape mismatch
type ShapeError struct {
	Mode     domain.Mode
	Observed string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("codec: mode %s expects %s, got %s", e.Mode, expected(e.Mode), e.Observed)
}

func (e *ShapeError) Unwrap() error {
	return ErrValueShapeMismatch
}

// Ref is one decoded reference. VariantHint is only set by keyed modes.
type Ref struct {
	ID          string
	VariantHint string
}

// Encode snapshots the selection in the shape of its mode. Single-cardinality
// modes encode an empty selection as nil; list modes as an empty list.
func Encode(s *selection.Set) Value {
	switch s.Mode() {
	case domain.ModeSingle:
		if items := s.Items(); len(items) > 0 {
			return SingleValue(items[0].ID)
		}
		return nil
	case domain.ModeSingleList:
		out := make(SingleListValue, 0, s.Len())
		for e := range s.List() {
			out = append(out, e.Item.ID)
		}
		return out
	case domain.ModeKeyed:
		if items := s.Items(); len(items) > 0 {
			return KeyedValue{ID: items[0].ID, Variant: items[0].Key()}
		}
		return nil
	case domain.ModeKeyedList:
		out := make(KeyedListValue, 0, s.Len())
		for e := range s.List() {
			out = append(out, KeyedRef{ID: e.Item.ID, Variant: e.Key()})
		}
		return out
	}
	panic(fmt.Sprintf("codec: unhandled mode %d", int(s.Mode())))
}

// Parse reads a stored value for mode. Absent values (no bytes, or JSON null)
// parse to nil. A value of the wrong shape fails with a *ShapeError.
func Parse(raw json.RawMessage, mode domain.Mode) (Value, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("codec: invalid mode %s", mode)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("codec: malformed value: %w", err)
	}

	mismatch := &ShapeError{Mode: mode, Observed: describe(generic)}

	switch mode {
	case domain.ModeSingle:
		id, ok := generic.(string)
		if !ok {
			return nil, mismatch
		}
		if id == "" {
			return nil, nil
		}
		return SingleValue(id), nil

	case domain.ModeSingleList:
		arr, ok := generic.([]any)
		if !ok {
			return nil, mismatch
		}
		out := make(SingleListValue, 0, len(arr))
		for i, el := range arr {
			id, ok := el.(string)
			if !ok {
				mismatch.Observed = fmt.Sprintf("array with %s at index %d", describe(el), i)
				return nil, mismatch
			}
			out = append(out, id)
		}
		return out, nil

	case domain.ModeKeyed:
		ref, ok := keyedRef(generic)
		if !ok {
			return nil, mismatch
		}
		return KeyedValue(ref), nil

	case domain.ModeKeyedList:
		arr, ok := generic.([]any)
		if !ok {
			return nil, mismatch
		}
		out := make(KeyedListValue, 0, len(arr))
		for i, el := range arr {
			ref, ok := keyedRef(el)
			if !ok {
				mismatch.Observed = fmt.Sprintf("array with %s at index %d", describe(el), i)
				return nil, mismatch
			}
			out = append(out, ref)
		}
		return out, nil
	}
	panic(fmt.Sprintf("codec: unhandled mode %d", int(mode)))
}

// Decode parses raw for mode and returns its references in stored order,
// with every id passed through normalize. A nil normalizer is Identity.
func Decode(raw json.RawMessage, mode domain.Mode, normalize IDNormalizer) ([]Ref, error) {
	v, err := Parse(raw, mode)
	if err != nil {
		return nil, err
	}
	if normalize == nil {
		normalize = Identity
	}
	refs := Refs(v)
	for i := range refs {
		refs[i].ID = normalize(refs[i].ID)
	}
	return refs, nil
}

// Refs lists the references held by v. A nil value has none.
func Refs(v Value) []Ref {
	switch v := v.(type) {
	case nil:
		return nil
	case SingleValue:
		if v == "" {
			return nil
		}
		return []Ref{{ID: string(v)}}
	case SingleListValue:
		out := make([]Ref, 0, len(v))
		for _, id := range v {
			out = append(out, Ref{ID: id})
		}
		return out
	case KeyedValue:
		if v.ID == "" {
			return nil
		}
		return []Ref{{ID: v.ID, VariantHint: v.Variant}}
	case KeyedListValue:
		out := make([]Ref, 0, len(v))
		for _, r := range v {
			out = append(out, Ref{ID: r.ID, VariantHint: r.Variant})
		}
		return out
	}
	panic(fmt.Sprintf("codec: unhandled value %T", v))
}

// Equal compares two values structurally. List shapes are order sensitive,
// and an absent value equals an empty one.
func Equal(a, b Value) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return IsEmpty(a) && IsEmpty(b)
	}
	if a.Mode() != b.Mode() {
		return false
	}
	switch a := a.(type) {
	case SingleValue:
		return a == b.(SingleValue)
	case SingleListValue:
		return slices.Equal(a, b.(SingleListValue))
	case KeyedValue:
		return a == b.(KeyedValue)
	case KeyedListValue:
		return slices.Equal(a, b.(KeyedListValue))
	}
	panic(fmt.Sprintf("codec: unhandled value %T", a))
}

func keyedRef(v any) (KeyedRef, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return KeyedRef{}, false
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return KeyedRef{}, false
	}
	ref := KeyedRef{ID: id}
	if raw, present := obj["variant"]; present && raw != nil {
		variant, ok := raw.(string)
		if !ok {
			return KeyedRef{}, false
		}
		ref.Variant = variant
	}
	return ref, true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func expected(mode domain.Mode) string {
	switch mode {
	case domain.ModeSingle:
		return "a string id"
	case domain.ModeSingleList:
		return "an array of string ids"
	case domain.ModeKeyed:
		return "an {id, variant} object"
	case domain.ModeKeyedList:
		return "an array of {id, variant} objects"
	default:
		return "a valid mode"
	}
}
