package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/binding"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/codec"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/config"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/errclass"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/fieldstore"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider/sqlitecatalog"
)

// app holds the components shared by every command
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	bus      *eventbus.Bus
	provider provider.CommerceProvider
	store    *fieldstore.SQLiteStore

	closers []func() error
}

// newApp opens the catalog and the field store named by cfg. key overrides
// the configured store key when non-empty.
func newApp(cfg *config.Config, logger *zap.Logger, key string) (*app, error) {
	a := &app{cfg: cfg, logger: logger, bus: eventbus.New(logger)}
	a.closers = append(a.closers, func() error { a.bus.Close(); return nil })

	p, err := openProvider(cfg.Provider, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.provider = p
	if c, ok := p.(*sqlitecatalog.Catalog); ok {
		a.closers = append(a.closers, c.Close)
	}

	if key == "" {
		key = cfg.Store.Key
	}
	store, err := fieldstore.OpenSQLite(cfg.Store.Path, key, schemaFor(cfg.Field))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open field store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	return a, nil
}

// Close releases everything in reverse order of opening
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// newBinding wires a field binding over the app's store and provider
func (a *app) newBinding() (*binding.Binding, error) {
	return binding.New(a.store, a.provider, bindingOptions(a.cfg, a.logger, a.bus)...)
}

func (a *app) classifier() errclass.Classifier {
	return classifierFor(a.cfg.Errors)
}

func schemaFor(f config.FieldSettings) fieldstore.Schema {
	return fieldstore.Schema{MaxItems: f.MaxItems, Title: f.Title, Description: f.Description}
}

func classifierFor(e config.ErrorSettings) errclass.Classifier {
	c := errclass.New(e.Origin)
	if e.DocsURL != "" {
		c.DocsURL = e.DocsURL
	}
	return c
}

func heightPolicyFor(u config.UISettings) binding.HeightPolicy {
	return binding.HeightPolicy{Base: u.BaseHeight, Open: u.OpenHeight, Row: u.RowHeight}
}

func bindingOptions(cfg *config.Config, logger *zap.Logger, bus eventbus.EventBus) []binding.Option {
	opts := []binding.Option{
		binding.WithMode(cfg.Field.Mode),
		binding.WithPageSize(cfg.Search.PageSize),
		binding.WithFetchTimeout(cfg.Search.FetchTimeout.Duration),
		binding.WithClassifier(classifierFor(cfg.Errors)),
		binding.WithHeightPolicy(heightPolicyFor(cfg.UI)),
		binding.WithLogger(logger),
		binding.WithBus(bus),
	}
	if cfg.Field.MaxItems > 0 {
		opts = append(opts, binding.WithMaxItems(cfg.Field.MaxItems))
	}
	if cfg.Field.EnforcedPath {
		opts = append(opts, binding.WithNormalizer(codec.EnforcedPath))
	}
	return opts
}

// openProvider returns the catalog selected by the driver setting. The
// memory driver loads its catalog from the YAML fixture named by DSN, if any.
func openProvider(pc config.ProviderConfig, logger *zap.Logger) (provider.CommerceProvider, error) {
	switch pc.Driver {
	case "sqlite":
		c, err := sqlitecatalog.Open(pc.DSN,
			sqlitecatalog.WithImageViewType(pc.ImageViewType),
			sqlitecatalog.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		return c, nil
	case "memory":
		p := provider.NewMemoryProvider()
		if pc.DSN == "" {
			return p, nil
		}
		if err := loadFixture(p, pc.DSN, pc.ImageViewType); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider driver %q", pc.Driver)
}

func loadFixture(p *provider.MemoryProvider, path, viewType string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	var fx sqlitecatalog.Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	for _, pf := range fx.Products {
		item := domain.Item{ID: pf.ID, DisplayName: pf.Name, ImageURL: pf.Images[viewType]}
		if len(pf.Variants) > 0 {
			item.VariantKey = pf.Variants[0]
		}
		p.AddItem(item, pf.Categories...)
	}
	p.SetCategoryTree(categoryTree(fx.Categories))
	return nil
}

func categoryTree(fixtures []sqlitecatalog.CategoryFixture) []domain.Category {
	if len(fixtures) == 0 {
		return nil
	}
	out := make([]domain.Category, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, domain.Category{ID: f.ID, Name: f.Name, Slug: f.Slug, Children: categoryTree(f.Children)})
	}
	return out
}

// forwardEvents subscribes send to the events the picker displays and
// returns a function that unsubscribes again
func forwardEvents(bus eventbus.EventBus, send func(eventbus.DomainEvent)) func() {
	types := []eventbus.EventType{
		eventbus.EventValuePushed,
		eventbus.EventValueCleared,
		eventbus.EventHeightRequested,
	}
	var unsubscribe []func()
	for _, t := range types {
		unsubscribe = append(unsubscribe, bus.Subscribe(t, send))
	}
	return func() {
		for _, u := range unsubscribe {
			u()
		}
	}
}

func lookupCategory(ctx context.Context, list func(context.Context) ([]domain.FlatCategory, error), ref string) (domain.FlatCategory, error) {
	cats, err := list(ctx)
	if err != nil {
		return domain.FlatCategory{}, err
	}
	for _, c := range cats {
		if c.ID == ref || c.Slug == ref {
			return c, nil
		}
	}
	return domain.FlatCategory{}, fmt.Errorf("%w: category %s", provider.ErrNotFound, ref)
}
