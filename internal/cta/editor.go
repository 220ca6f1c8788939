package cta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/binding"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/errclass"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/fieldstore"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
)

var (
	// ErrUnknownKind is returned for kinds other than product, category and extUrl
	ErrUnknownKind = errors.New("cta: unknown kind")
	// ErrWrongKind is returned when an edit does not apply to the current kind
	ErrWrongKind = errors.New("cta: edit does not apply to current kind")
)

// Editor owns one call-to-action field
type Editor struct {
	store      fieldstore.FieldStore
	provider   provider.CommerceProvider
	classifier errclass.Classifier
	logger     *zap.Logger
	bus        eventbus.EventBus
	height     binding.HeightPolicy

	mu         sync.Mutex
	value      Value
	lastPushed *Value

	catMu      sync.Mutex
	categories []domain.FlatCategory
	catLoaded  bool
}

// Option configures an Editor
type Option func(*Editor)

// WithClassifier sets how provider failures are rendered
func WithClassifier(c errclass.Classifier) Option {
	return func(e *Editor) { e.classifier = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBus sets the bus domain events are published on
func WithBus(b eventbus.EventBus) Option {
	return func(e *Editor) {
		if b != nil {
			e.bus = b
		}
	}
}

// WithHeightPolicy sets the frame height policy
func WithHeightPolicy(p binding.HeightPolicy) Option {
	return func(e *Editor) { e.height = p }
}

// New creates an editor over store
func New(store fieldstore.FieldStore, p provider.CommerceProvider, opts ...Option) *Editor {
	e := &Editor{
		store:      store,
		provider:   p,
		classifier: errclass.New(""),
		logger:     zap.NewNop(),
		bus:        eventbus.NullBus{},
		height:     binding.DefaultHeightPolicy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the stored value. Values that cannot be read as a call to
// action are ignored and the editor starts blank.
func (e *Editor) Load(ctx context.Context) (Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw, err := e.store.GetValue(ctx)
	if err != nil {
		return Value{}, fmt.Errorf("cta: read stored value: %w", err)
	}
	e.value, e.lastPushed = Value{}, nil
	if fieldstore.IsAbsent(raw) {
		return e.value, nil
	}
	v, err := parseValue(raw)
	if err != nil {
		e.logger.Warn("Ignoring stored value", zap.ByteString("value", raw), zap.Error(err))
		return e.value, nil
	}
	e.value = v
	e.lastPushed = &v
	return v, nil
}

// Value returns the value being edited
func (e *Editor) Value() Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// SetKind starts over with a blank value of kind k. Choosing category loads
// the category list.
func (e *Editor) SetKind(ctx context.Context, k Kind) (Value, error) {
	if !k.Valid() {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	v, err := e.update(ctx, func(Value) (Value, error) { return Blank(k), nil })
	if err != nil {
		return v, err
	}
	e.store.SetHeight(e.height.Base)
	e.bus.Publish(domain.HeightRequestedEvent{Pixels: e.height.Base})
	if k == KindCategory {
		if _, err := e.Categories(ctx); err != nil {
			return v, err
		}
	}
	return v, nil
}

// LookupProduct fills the value from the product with the given id. An
// unknown id fails with provider.ErrNotFound and leaves the value untouched.
func (e *Editor) LookupProduct(ctx context.Context, id string) (Value, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return e.Value(), nil
	}
	if k := e.Value().ExtIDType; k != KindProduct {
		return e.Value(), fmt.Errorf("%w: lookup needs %s, have %q", ErrWrongKind, KindProduct, k)
	}

	item, err := e.provider.GetItem(ctx, id)
	if err != nil {
		return e.Value(), e.fail(ctx, err)
	}
	if item == nil {
		return e.Value(), fmt.Errorf("%w: product with ID %s not found", provider.ErrNotFound, id)
	}
	return e.update(ctx, func(Value) (Value, error) {
		return Value{ExtID: item.ID, ExtIDType: KindProduct, Text: item.DisplayName, Image: item.ImageURL}, nil
	})
}

// Categories returns the flattened category list, loaded once
func (e *Editor) Categories(ctx context.Context) ([]domain.FlatCategory, error) {
	e.catMu.Lock()
	defer e.catMu.Unlock()
	if e.catLoaded {
		return e.categories, nil
	}
	tree, err := e.provider.GetCategoryTree(ctx)
	if err != nil {
		return nil, e.fail(ctx, err)
	}
	e.categories = provider.Flatten(tree)
	e.catLoaded = true
	return e.categories, nil
}

// ChooseCategory points the call to action at c
func (e *Editor) ChooseCategory(ctx context.Context, c domain.FlatCategory) (Value, error) {
	return e.update(ctx, func(cur Value) (Value, error) {
		if cur.ExtIDType != KindCategory {
			return cur, fmt.Errorf("%w: category needs %s, have %q", ErrWrongKind, KindCategory, cur.ExtIDType)
		}
		return Value{ExtID: c.ID, ExtIDType: KindCategory, Text: c.Name}, nil
	})
}

// ClearCategory drops the chosen category
func (e *Editor) ClearCategory(ctx context.Context) (Value, error) {
	return e.update(ctx, func(cur Value) (Value, error) {
		if cur.ExtIDType != KindCategory {
			return cur, fmt.Errorf("%w: category needs %s, have %q", ErrWrongKind, KindCategory, cur.ExtIDType)
		}
		return Blank(KindCategory), nil
	})
}

// SetExternalURL sets the target of an extUrl call to action
func (e *Editor) SetExternalURL(ctx context.Context, url string) (Value, error) {
	return e.update(ctx, func(cur Value) (Value, error) {
		if cur.ExtIDType != KindExtURL {
			return cur, fmt.Errorf("%w: url needs %s, have %q", ErrWrongKind, KindExtURL, cur.ExtIDType)
		}
		cur.ExtID = url
		return cur, nil
	})
}

// SetText sets the button or alt text
func (e *Editor) SetText(ctx context.Context, text string) (Value, error) {
	return e.update(ctx, func(cur Value) (Value, error) {
		if cur.ExtIDType == KindNone {
			return cur, fmt.Errorf("%w: choose a kind first", ErrWrongKind)
		}
		cur.Text = text
		return cur, nil
	})
}

// SetImage sets the image URL
func (e *Editor) SetImage(ctx context.Context, image string) (Value, error) {
	return e.update(ctx, func(cur Value) (Value, error) {
		if cur.ExtIDType == KindNone {
			return cur, fmt.Errorf("%w: choose a kind first", ErrWrongKind)
		}
		cur.Image = image
		return cur, nil
	})
}

// Reset drops everything and goes back to a blank product
func (e *Editor) Reset(ctx context.Context) (Value, error) {
	return e.update(ctx, func(Value) (Value, error) { return Blank(KindProduct), nil })
}

// ClearDerived blanks the text and image filled in by a lookup
func (e *Editor) ClearDerived(ctx context.Context) (Value, error) {
	return e.update(ctx, func(cur Value) (Value, error) {
		cur.Text, cur.Image = "", ""
		return cur, nil
	})
}

// SetListOpen resizes the frame while the category list is open
func (e *Editor) SetListOpen(open bool) {
	px := e.height.Pixels(0, open)
	e.store.SetHeight(px)
	e.bus.Publish(domain.HeightRequestedEvent{Pixels: px})
}

// update applies fn and reconciles the store: an empty value clears it,
// anything else is written when it differs from the last pushed value.
// A failed write keeps the edit and is retried by the next update.
func (e *Editor) update(ctx context.Context, fn func(Value) (Value, error)) (Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.value)
	if err != nil {
		return e.value, err
	}
	e.value = next

	if next.IsEmpty() {
		if e.lastPushed == nil {
			return next, nil
		}
		if err := e.store.ClearValue(ctx); err != nil {
			return next, fmt.Errorf("cta: clear value: %w", err)
		}
		e.lastPushed = nil
		e.bus.Publish(domain.ValueClearedEvent{})
		return next, nil
	}

	if e.lastPushed != nil && *e.lastPushed == next {
		return next, nil
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return next, fmt.Errorf("cta: encode value: %w", err)
	}
	if err := e.store.SetValue(ctx, raw); err != nil {
		e.logger.Warn("Failed to push value", zap.Error(err))
		return next, fmt.Errorf("cta: push value: %w", err)
	}
	pushed := next
	e.lastPushed = &pushed
	e.logger.Debug("Pushed value", zap.ByteString("value", raw))
	e.bus.Publish(domain.ValuePushedEvent{Value: raw})
	return next, nil
}

func (e *Editor) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	classified := e.classifier.Classify(err)
	e.logger.Warn("Provider call failed", zap.Stringer("category", classified.Category), zap.Error(err))
	e.bus.Publish(domain.ErrorEvent{Message: classified.Message, Err: classified})
	return classified
}
