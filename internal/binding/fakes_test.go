package binding

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/fieldstore"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
)

// recordingStore counts writes on top of an in-memory store
type recordingStore struct {
	*fieldstore.MemoryStore

	mu      sync.Mutex
	sets    []string
	clears  int
	heights []int
	setErr  error
	readErr error
	gate    chan struct{} // blocks GetValue while non-nil
	reading chan struct{}
}

func newRecordingStore(schema fieldstore.Schema, initial string) *recordingStore {
	var raw json.RawMessage
	if initial != "" {
		raw = json.RawMessage(initial)
	}
	return &recordingStore{MemoryStore: fieldstore.NewMemoryStore(schema, raw)}
}

func (s *recordingStore) GetValue(ctx context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	gate, reading, err := s.gate, s.reading, s.readErr
	s.mu.Unlock()
	if reading != nil {
		close(reading)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return s.MemoryStore.GetValue(ctx)
}

func (s *recordingStore) SetValue(ctx context.Context, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		err := s.setErr
		s.setErr = nil
		return err
	}
	s.sets = append(s.sets, string(value))
	return s.MemoryStore.SetValue(ctx, value)
}

func (s *recordingStore) ClearValue(ctx context.Context) error {
	s.mu.Lock()
	s.clears++
	s.mu.Unlock()
	return s.MemoryStore.ClearValue(ctx)
}

func (s *recordingStore) SetHeight(px int) {
	s.mu.Lock()
	s.heights = append(s.heights, px)
	s.mu.Unlock()
	s.MemoryStore.SetHeight(px)
}

func (s *recordingStore) pushes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sets...)
}

func (s *recordingStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// countingProvider wraps the in-memory provider with call counters and
// injectable failures
type countingProvider struct {
	*provider.MemoryProvider

	batchErr    error
	itemErr     map[string]error
	treeErr     error
	searchErr   error
	getItem     atomic.Int32
	getItems    atomic.Int32
	getTreeCall atomic.Int32
}

func newCountingProvider(items ...domain.Item) *countingProvider {
	mp := provider.NewMemoryProvider()
	for _, it := range items {
		mp.AddItem(it)
	}
	return &countingProvider{MemoryProvider: mp, itemErr: map[string]error{}}
}

func (p *countingProvider) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	p.getItem.Add(1)
	if err := p.itemErr[id]; err != nil {
		return nil, err
	}
	return p.MemoryProvider.GetItem(ctx, id)
}

func (p *countingProvider) GetItems(ctx context.Context, req provider.ItemsRequest) ([]*domain.Item, error) {
	p.getItems.Add(1)
	if len(req.IDs) > 0 && p.batchErr != nil {
		return nil, p.batchErr
	}
	if len(req.IDs) == 0 && p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.MemoryProvider.GetItems(ctx, req)
}

func (p *countingProvider) GetCategoryTree(ctx context.Context) ([]domain.Category, error) {
	p.getTreeCall.Add(1)
	if p.treeErr != nil {
		return nil, p.treeErr
	}
	return p.MemoryProvider.GetCategoryTree(ctx)
}

// syncBus records events synchronously
type syncBus struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (b *syncBus) Publish(e eventbus.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *syncBus) Subscribe(eventbus.EventType, eventbus.EventHandler) func() {
	return func() {}
}

func (b *syncBus) ofType(t eventbus.EventType) []eventbus.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []eventbus.DomainEvent
	for _, e := range b.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}
