// Package cta edits call-to-action field values that point at a product, a
// category or an external URL.
package cta

import (
	"encoding/json"
	"fmt"
)

// Kind is what a call to action points at
type Kind string

const (
	KindNone     Kind = ""
	KindProduct  Kind = "product"
	KindCategory Kind = "category"
	KindExtURL   Kind = "extUrl"
)

// Kinds lists the selectable kinds
func Kinds() []Kind {
	return []Kind{KindProduct, KindCategory, KindExtURL}
}

// Valid reports whether k is a selectable kind
func (k Kind) Valid() bool {
	switch k {
	case KindProduct, KindCategory, KindExtURL:
		return true
	}
	return false
}

// ParseKind accepts the wire names plus "url" for KindExtURL
func ParseKind(s string) (Kind, error) {
	switch s {
	case "product":
		return KindProduct, nil
	case "category":
		return KindCategory, nil
	case "extUrl", "url":
		return KindExtURL, nil
	}
	return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Value is the stored call to action
type Value struct {
	ExtID     string `json:"extId"`
	ExtIDType Kind   `json:"extIdType"`
	Text      string `json:"text"`
	Image     string `json:"image"`
}

// Blank returns an empty value of kind k
func Blank(k Kind) Value {
	return Value{ExtIDType: k}
}

// IsEmpty reports whether the value carries no content. The kind alone does
// not count as content.
func (v Value) IsEmpty() bool {
	return v.ExtID == "" && v.Text == "" && v.Image == ""
}

func parseValue(raw json.RawMessage) (Value, error) {
	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, fmt.Errorf("cta: malformed value: %w", err)
	}
	if v.ExtIDType != KindNone && !v.ExtIDType.Valid() {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownKind, v.ExtIDType)
	}
	return v, nil
}
