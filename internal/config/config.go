package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
)

// FileName is the configuration file looked up in the working directory
const FileName = ".fieldpicker.toml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "FIELDPICKER_"

// Config represents the application configuration
type Config struct {
	Version  int            `toml:"version"`
	Field    FieldSettings  `toml:"field" envPrefix:"FIELD_"`
	Search   SearchSettings `toml:"search" envPrefix:"SEARCH_"`
	Provider ProviderConfig `toml:"provider" envPrefix:"PROVIDER_"`
	Store    StoreSettings  `toml:"store" envPrefix:"STORE_"`
	Errors   ErrorSettings  `toml:"errors" envPrefix:"ERRORS_"`
	UI       UISettings     `toml:"ui" envPrefix:"UI_"`
	Log      LogSettings    `toml:"log" envPrefix:"LOG_"`
}

// FieldSettings describes the field being edited
type FieldSettings struct {
	Mode         domain.Mode `toml:"mode" env:"MODE"`
	MaxItems     int         `toml:"max_items" env:"MAX_ITEMS"`
	Title        string      `toml:"title" env:"TITLE"`
	Description  string      `toml:"description" env:"DESCRIPTION"`
	EnforcedPath bool        `toml:"enforced_path" env:"ENFORCED_PATH"` // stored ids are slash-delimited paths
}

// SearchSettings tunes result paging
type SearchSettings struct {
	PageSize     int      `toml:"page_size" env:"PAGE_SIZE"`
	FetchTimeout Duration `toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
}

// ProviderConfig selects the commerce backend
type ProviderConfig struct {
	Driver        string `toml:"driver" env:"DRIVER"` // memory or sqlite
	DSN           string `toml:"dsn" env:"DSN"`
	ImageViewType string `toml:"image_view_type" env:"IMAGE_VIEW_TYPE"`
}

// StoreSettings locates the persisted field value
type StoreSettings struct {
	Path string `toml:"path" env:"PATH"`
	Key  string `toml:"key" env:"KEY"`
}

// ErrorSettings feeds the error classifier
type ErrorSettings struct {
	DocsURL string `toml:"docs_url" env:"DOCS_URL"`
	Origin  string `toml:"origin" env:"ORIGIN"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	BaseHeight int `toml:"base_height" env:"BASE_HEIGHT"`
	RowHeight  int `toml:"row_height" env:"ROW_HEIGHT"`
	OpenHeight int `toml:"open_height" env:"OPEN_HEIGHT"`
}

// LogSettings configures the zap logger
type LogSettings struct {
	Level string `toml:"level" env:"LEVEL"`
	File  string `toml:"file" env:"FILE"`
}

// Duration is a time.Duration written as "5s" in TOML and the environment
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	var errs []error
	if !c.Field.Mode.Valid() {
		errs = append(errs, fmt.Errorf("field.mode: unknown mode %d", int(c.Field.Mode)))
	}
	if c.Field.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("field.max_items: must not be negative, got %d", c.Field.MaxItems))
	}
	if c.Search.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("search.page_size: must be positive, got %d", c.Search.PageSize))
	}
	if c.Search.FetchTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("search.fetch_timeout: must not be negative"))
	}
	switch c.Provider.Driver {
	case "memory":
	case "sqlite":
		if c.Provider.DSN == "" {
			errs = append(errs, errors.New("provider.dsn: required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("provider.driver: unknown driver %q", c.Provider.Driver))
	}
	return errors.Join(errs...)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
	environ  map[string]string // nil means the process environment
}

// NewConfigService creates a config service reading FileName in dir
func NewConfigService(dir string) ConfigService {
	return &configService{filePath: filepath.Join(dir, FileName)}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(dir string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(dir).(*configService)
	cs.bus = bus
	return cs
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides and validates the result
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.read(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cs.finish(cfg); err != nil {
		return nil, err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path, which must exist
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	cfg, err := cs.read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	if err := cs.finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (cs *configService) read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (cs *configService) finish(cfg *Config) error {
	opts := env.Options{Prefix: EnvPrefix}
	if cs.environ != nil {
		opts.Environment = cs.environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Field: FieldSettings{
			Mode: domain.ModeSingleList,
		},
		Search: SearchSettings{
			PageSize:     20,
			FetchTimeout: Duration{10 * time.Second},
		},
		Provider: ProviderConfig{
			Driver:        "memory",
			ImageViewType: "gridTileDesktop",
		},
		Store: StoreSettings{
			Path: "fieldpicker.db",
			Key:  "default",
		},
		UI: UISettings{
			BaseHeight: 310,
			RowHeight:  0,
			OpenHeight: 360,
		},
		Log: LogSettings{
			Level: "info",
			File:  "fieldpicker.log",
		},
	}
}
