// Package fieldstore defines the host's persistence slot for a widget value.
package fieldstore

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// Schema is the read-only field metadata supplied by the host
type Schema struct {
	MaxItems    int // 0 when unset
	Title       string
	Description string
}

// FieldStore is the host capability holding one field value. Values travel
// as JSON; an absent value is reported as nil.
type FieldStore interface {
	GetValue(ctx context.Context) (json.RawMessage, error)
	SetValue(ctx context.Context, value json.RawMessage) error
	ClearValue(ctx context.Context) error
	// SetHeight is a fire-and-forget frame height hint
	SetHeight(pixels int)
	Schema() Schema
}

// IsAbsent reports whether a raw value means "no value"
func IsAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// MemoryStore is an in-memory FieldStore
type MemoryStore struct {
	mu     sync.RWMutex
	value  json.RawMessage
	height int
	schema Schema
}

// NewMemoryStore creates a store with the given schema and initial value (may be nil)
func NewMemoryStore(schema Schema, initial json.RawMessage) *MemoryStore {
	s := &MemoryStore{schema: schema}
	if !IsAbsent(initial) {
		s.value = clone(initial)
	}
	return s
}

func (s *MemoryStore) GetValue(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.value), nil
}

func (s *MemoryStore) SetValue(ctx context.Context, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if IsAbsent(value) {
		s.value = nil
		return nil
	}
	s.value = clone(value)
	return nil
}

func (s *MemoryStore) ClearValue(ctx context.Context) error {
	return s.SetValue(ctx, nil)
}

func (s *MemoryStore) SetHeight(pixels int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height = pixels
}

// Height returns the last requested frame height
func (s *MemoryStore) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

func (s *MemoryStore) Schema() Schema {
	return s.schema
}

func clone(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
