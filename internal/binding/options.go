package binding

import (
	"time"

	"go.uber.org/zap"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/codec"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/errclass"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
)

// HeightPolicy computes the frame height the widget asks its host for
type HeightPolicy struct {
	Base int // closed widget
	Open int // while a category list is open
	Row  int // added per rendered row
}

// DefaultHeightPolicy matches the fixed frame sizes of the hosted widgets
var DefaultHeightPolicy = HeightPolicy{Base: 310, Open: 360, Row: 0}

// Pixels returns the height for rows rendered rows
func (p HeightPolicy) Pixels(rows int, open bool) int {
	h := p.Base
	if open {
		h = p.Open
	}
	if rows > 0 {
		h += rows * p.Row
	}
	return h
}

type options struct {
	mode            domain.Mode
	maxItems        int
	maxItemsSet     bool
	normalize       codec.IDNormalizer
	pageSize        int
	fetchTimeout    time.Duration
	classifier      errclass.Classifier
	logger          *zap.Logger
	bus             eventbus.EventBus
	height          HeightPolicy
	resolveParallel int
}

func defaultOptions() options {
	return options{
		mode:            domain.ModeSingleList,
		normalize:       codec.Identity,
		classifier:      errclass.New(""),
		logger:          zap.NewNop(),
		bus:             eventbus.NullBus{},
		height:          DefaultHeightPolicy,
		resolveParallel: 4,
	}
}

// Option configures a Binding
type Option func(*options)

// WithMode sets the value shape
func WithMode(m domain.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithMaxItems overrides the bound taken from the field schema
func WithMaxItems(n int) Option {
	return func(o *options) {
		o.maxItems = n
		o.maxItemsSet = true
	}
}

// WithNormalizer sets how stored ids map to provider ids
func WithNormalizer(fn codec.IDNormalizer) Option {
	return func(o *options) {
		if fn != nil {
			o.normalize = fn
		}
	}
}

// WithPageSize sets the search page size
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithFetchTimeout bounds every search fetch
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.fetchTimeout = d
	}
}

// WithClassifier sets how provider failures are rendered
func WithClassifier(c errclass.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBus sets the bus domain events are published on
func WithBus(b eventbus.EventBus) Option {
	return func(o *options) {
		if b != nil {
			o.bus = b
		}
	}
}

// WithHeightPolicy sets the frame height policy
func WithHeightPolicy(p HeightPolicy) Option {
	return func(o *options) {
		o.height = p
	}
}

// WithResolveParallelism bounds concurrent single-id lookups when the
// provider has no batch lookup
func WithResolveParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.resolveParallel = n
		}
	}
}
