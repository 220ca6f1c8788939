package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
)

type recordingBus struct {
	events []eventbus.DomainEvent
}

func (b *recordingBus) Publish(e eventbus.DomainEvent) { b.events = append(b.events, e) }

func (b *recordingBus) Subscribe(eventbus.EventType, eventbus.EventHandler) func() { return func() {} }

func service(dir string, environ map[string]string) *configService {
	cs := NewConfigService(dir).(*configService)
	if environ == nil {
		environ = map[string]string{}
	}
	cs.environ = environ
	return cs
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	bus := &recordingBus{}
	cs := NewConfigServiceWithBus(t.TempDir(), bus).(*configService)
	cs.environ = map[string]string{}

	cfg, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.Len(t, bus.events, 1)
	assert.Equal(t, eventbus.EventConfigLoaded, bus.events[0].Type())
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	data := `
version = 1

[field]
mode = "keyed-list"
max_items = 3
title = "Featured products"
enforced_path = true

[search]
page_size = 12
fetch_timeout = "750ms"

[provider]
driver = "sqlite"
dsn = "catalog.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644))

	cfg, err := service(dir, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeKeyedList, cfg.Field.Mode)
	assert.Equal(t, 3, cfg.Field.MaxItems)
	assert.Equal(t, "Featured products", cfg.Field.Title)
	assert.True(t, cfg.Field.EnforcedPath)
	assert.Equal(t, 12, cfg.Search.PageSize)
	assert.Equal(t, 750*time.Millisecond, cfg.Search.FetchTimeout.Duration)
	assert.Equal(t, "sqlite", cfg.Provider.Driver)
	// untouched sections keep their defaults
	assert.Equal(t, "gridTileDesktop", cfg.Provider.ImageViewType)
	assert.Equal(t, 310, cfg.UI.BaseHeight)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[field]\nmode = \"single\"\n"), 0o644))

	cfg, err := service(dir, map[string]string{
		"FIELDPICKER_FIELD_MODE":               "keyed",
		"FIELDPICKER_SEARCH_FETCH_TIMEOUT":     "2s",
		"FIELDPICKER_ERRORS_ORIGIN":            "https://app.example",
		"FIELDPICKER_PROVIDER_IMAGE_VIEW_TYPE": "large",
	}).Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeKeyed, cfg.Field.Mode)
	assert.Equal(t, 2*time.Second, cfg.Search.FetchTimeout.Duration)
	assert.Equal(t, "https://app.example", cfg.Errors.Origin)
	assert.Equal(t, "large", cfg.Provider.ImageViewType)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"unknown mode":   "[field]\nmode = \"triple\"\n",
		"negative max":   "[field]\nmax_items = -1\n",
		"zero page size": "[search]\npage_size = 0\n",
		"sqlite no dsn":  "[provider]\ndriver = \"sqlite\"\n",
		"bad driver":     "[provider]\ndriver = \"graphql\"\n",
		"bad duration":   "[search]\nfetch_timeout = \"soon\"\n",
		"not toml":       "field = [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644))
			_, err := service(dir, nil).Load()
			require.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bus := &recordingBus{}
	cs := NewConfigServiceWithBus(dir, bus).(*configService)
	cs.environ = map[string]string{}

	cfg := DefaultConfig()
	cfg.Field.Mode = domain.ModeKeyed
	cfg.Search.FetchTimeout = Duration{3 * time.Second}
	require.NoError(t, cs.Save(cfg))

	loaded, err := cs.LoadFromPath(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	require.Len(t, bus.events, 1)
	assert.Equal(t, eventbus.EventConfigSaved, bus.events[0].Type())

	cfg.Search.PageSize = 0
	require.Error(t, cs.SaveToPath(cfg, filepath.Join(dir, "other.toml")))
}

func TestLoadFromPathRequiresFile(t *testing.T) {
	_, err := service(t.TempDir(), nil).LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadAndSavePublishConfigPath(t *testing.T) {
	dir := t.TempDir()
	bus := &recordingBus{}
	cs := NewConfigServiceWithBus(dir, bus).(*configService)
	cs.environ = map[string]string{}

	_, err := cs.Load()
	require.NoError(t, err)
	require.NoError(t, cs.Save(DefaultConfig()))

	path := filepath.Join(dir, FileName)
	assert.Equal(t, []eventbus.DomainEvent{
		domain.ConfigLoadedEvent{Path: path},
		domain.ConfigSavedEvent{Path: path},
	}, bus.events)
}
