// Package binding keeps a widget's selection and the host field store in
// step: it hydrates the selection from the stored value once, then pushes
// every effective change back, and only when the encoded value differs.
package binding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/codec"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/errclass"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/fieldstore"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/results"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/selection"
)

// ErrNotReady is returned by mutations attempted before hydration finished
var ErrNotReady = errors.New("binding: not ready, stored value is still loading")

// State is the binding lifecycle
type State int32

const (
	StateHydrating State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "hydrating"
}

// Binding ties one widget instance to its field store
type Binding struct {
	id         string
	store      fieldstore.FieldStore
	provider   provider.CommerceProvider
	mode       domain.Mode
	maxItems   int
	normalize  codec.IDNormalizer
	classifier errclass.Classifier
	logger     *zap.Logger
	bus        eventbus.EventBus
	height     HeightPolicy
	parallel   int
	pageSize   int
	session    *results.Session[domain.Item]

	state atomic.Int32

	mu         sync.Mutex // serializes mutations and store writes
	set        *selection.Set
	lastPushed codec.Value
	listOpen   bool
	rows       int

	catMu      sync.Mutex
	categories []domain.FlatCategory
	catLoaded  bool
}

// New creates a binding in the hydrating state. The selection bound defaults
// to the field schema's max items.
func New(store fieldstore.FieldStore, p provider.CommerceProvider, opts ...Option) (*Binding, error) {
	if store == nil {
		return nil, errors.New("binding: nil field store")
	}
	if p == nil {
		return nil, errors.New("binding: nil provider")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.maxItemsSet {
		o.maxItems = store.Schema().MaxItems
	}
	if o.pageSize <= 0 {
		o.pageSize = results.DefaultPageSize
	}

	set, err := selection.New(o.mode, selection.WithMaxItems(o.maxItems))
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}

	b := &Binding{
		id:         uuid.NewString(),
		store:      store,
		provider:   p,
		mode:       o.mode,
		maxItems:   o.maxItems,
		normalize:  o.normalize,
		classifier: o.classifier,
		bus:        o.bus,
		height:     o.height,
		parallel:   o.resolveParallel,
		pageSize:   o.pageSize,
		set:        set,
	}
	b.logger = o.logger.With(zap.String("binding", b.id), zap.Stringer("mode", o.mode))
	b.session = results.NewSession(b.fetchPage, o.pageSize,
		results.WithFetchTimeout(o.fetchTimeout),
		results.WithLogger(b.logger))
	return b, nil
}

// ID identifies the binding in logs
func (b *Binding) ID() string {
	return b.id
}

// Mode returns the configured value shape
func (b *Binding) Mode() domain.Mode {
	return b.mode
}

// State returns the lifecycle state
func (b *Binding) State() State {
	return State(b.state.Load())
}

// Schema returns the field metadata supplied by the host
func (b *Binding) Schema() fieldstore.Schema {
	return b.store.Schema()
}

// Selection returns the selected items in insertion order
func (b *Binding) Selection() []domain.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.set.Items()
}

// LastPushed returns the value the store is believed to hold, nil when absent
func (b *Binding) LastPushed() codec.Value {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPushed
}

// Add selects item and reconciles the store. Selection rule violations are
// returned as is and leave everything untouched. A failed store write keeps
// the new selection; the next mutation or Sync retries the push.
func (b *Binding) Add(ctx context.Context, item domain.Item) (selection.Change, error) {
	return b.mutate(ctx, func(s *selection.Set) (selection.Change, error) {
		return s.Add(item)
	})
}

// Remove deselects the entry with the given variant key
func (b *Binding) Remove(ctx context.Context, variantKey string) (selection.Change, error) {
	return b.mutate(ctx, func(s *selection.Set) (selection.Change, error) {
		return s.Remove(variantKey), nil
	})
}

// Clear deselects everything
func (b *Binding) Clear(ctx context.Context) (selection.Change, error) {
	return b.mutate(ctx, func(s *selection.Set) (selection.Change, error) {
		return s.Clear(), nil
	})
}

// Toggle removes item when its variant key is selected and adds it otherwise
func (b *Binding) Toggle(ctx context.Context, item domain.Item) (selection.Change, error) {
	return b.mutate(ctx, func(s *selection.Set) (selection.Change, error) {
		if s.Contains(item.Key()) {
			return s.Remove(item.Key()), nil
		}
		return s.Add(item)
	})
}

// SelectByID looks the item up and selects it. Unknown ids fail with
// provider.ErrNotFound.
func (b *Binding) SelectByID(ctx context.Context, id string) (selection.Change, error) {
	if b.State() != StateReady {
		return selection.Change{}, ErrNotReady
	}
	item, err := b.provider.GetItem(ctx, b.normalize(id))
	if err != nil {
		return selection.Change{}, b.fail(ctx, "lookup by id", err)
	}
	if item == nil {
		return selection.Change{}, fmt.Errorf("%w: product with ID %s not found", provider.ErrNotFound, id)
	}
	return b.Add(ctx, *item)
}

// Sync pushes the current selection if it differs from the last pushed value
func (b *Binding) Sync(ctx context.Context) error {
	if b.State() != StateReady {
		return ErrNotReady
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reconcile(ctx)
}

func (b *Binding) mutate(ctx context.Context, fn func(*selection.Set) (selection.Change, error)) (selection.Change, error) {
	if b.State() != StateReady {
		return selection.Change{}, ErrNotReady
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	before := b.set.Len()
	change, err := fn(b.set)
	if err != nil {
		return change, err
	}
	if !change.Changed() {
		return change, nil
	}

	b.bus.Publish(domain.SelectionChangedEvent{
		Added:   change.Added(),
		Removed: change.Removed(),
		Total:   b.set.Len(),
	})
	if b.set.Len() != before {
		b.rows = b.set.Len()
		b.requestHeightLocked()
	}

	if err := b.reconcile(ctx); err != nil {
		return change, err
	}
	return change, nil
}

// reconcile encodes the selection, compares it with lastPushed and writes
// only on difference. An empty selection clears the store instead. Caller
// holds b.mu.
func (b *Binding) reconcile(ctx context.Context) error {
	current := codec.Encode(b.set)

	if codec.IsEmpty(current) {
		if codec.IsEmpty(b.lastPushed) {
			return nil
		}
		if err := b.store.ClearValue(ctx); err != nil {
			b.logger.Warn("Failed to clear stored value", zap.Error(err))
			return fmt.Errorf("binding: clear value: %w", err)
		}
		b.lastPushed = nil
		b.logger.Debug("Cleared stored value")
		b.bus.Publish(domain.ValueClearedEvent{})
		return nil
	}

	if codec.Equal(current, b.lastPushed) {
		return nil
	}

	raw, err := codec.Marshal(current)
	if err != nil {
		return fmt.Errorf("binding: encode value: %w", err)
	}
	if err := b.store.SetValue(ctx, raw); err != nil {
		b.logger.Warn("Failed to push value", zap.Error(err))
		return fmt.Errorf("binding: push value: %w", err)
	}
	b.lastPushed = current
	b.logger.Debug("Pushed value", zap.ByteString("value", raw))
	b.bus.Publish(domain.ValuePushedEvent{Mode: b.mode, Value: raw})
	return nil
}

// RequestHeight asks the host to fit rows rendered rows
func (b *Binding) RequestHeight(rows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = rows
	b.requestHeightLocked()
}

// SetListOpen records whether a category list is open and resizes the frame
func (b *Binding) SetListOpen(open bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listOpen == open {
		return
	}
	b.listOpen = open
	b.requestHeightLocked()
}

func (b *Binding) requestHeightLocked() {
	px := b.height.Pixels(b.rows, b.listOpen)
	b.store.SetHeight(px)
	b.bus.Publish(domain.HeightRequestedEvent{Pixels: px})
}

// fail classifies a provider failure, publishes it and returns the
// classified error. Context errors pass through untouched.
func (b *Binding) fail(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	classified := b.classifier.Classify(err)
	b.logger.Warn("Provider call failed",
		zap.String("op", op),
		zap.Stringer("category", classified.Category),
		zap.Error(err))
	b.bus.Publish(domain.ErrorEvent{Message: classified.Message, Err: classified})
	return classified
}

// MaxItems returns the selection bound, 0 when unbounded
func (b *Binding) MaxItems() int {
	return b.maxItems
}
