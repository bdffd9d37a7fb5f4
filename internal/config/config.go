package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/pelletier/go-toml/v2"

	"midlo/internal/api"
	"midlo/internal/eventbus"
	"midlo/internal/share"
	"midlo/internal/suggest"
)

// Config represents the application configuration
type Config struct {
	Version    int           `toml:"version"`
	APIBaseURL string        `toml:"api_base_url"`
	WebBaseURL string        `toml:"web_base_url"`
	LogLevel   string        `toml:"log_level"`
	LogFile    string        `toml:"log_file"`
	Suggest    SuggestConfig `toml:"suggest"`
	History    HistoryConfig `toml:"history"`
	Share      ShareConfig   `toml:"share"`
	API        APIConfig     `toml:"api"`
}

// SuggestConfig tunes the address autocomplete
type SuggestConfig struct {
	Debounce       Duration `toml:"debounce"`
	BlurGrace      Duration `toml:"blur_grace"`
	MinQueryLength int      `toml:"min_query_length"`
	MaxSuggestions int      `toml:"max_suggestions"`
}

// HistoryConfig controls the recent searches store
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Keep    int    `toml:"keep"`
}

// ShareConfig configures the preview server
type ShareConfig struct {
	Addr      string   `toml:"addr"`
	CacheSize int      `toml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

// APIConfig configures the backend client
type APIConfig struct {
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit"`
	Burst     int      `toml:"burst"`
}

// Duration is a time.Duration stored as a string like "250ms" in TOML
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// envOverrides are read from the environment after the file
type envOverrides struct {
	APIBaseURL  string        `env:"MIDLO_API_BASE_URL"`
	WebBaseURL  string        `env:"MIDLO_WEB_BASE_URL"`
	LogLevel    string        `env:"MIDLO_LOG_LEVEL"`
	LogFile     string        `env:"MIDLO_LOG_FILE"`
	Debounce    time.Duration `env:"MIDLO_DEBOUNCE"`
	HistoryPath string        `env:"MIDLO_HISTORY_PATH"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// Dir returns the midlo config directory, creating it if needed
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	dir := filepath.Join(configDir, "midlo")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// NewConfigService creates a config service for the default config file
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(Dir(), "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support.
// An empty path selects the default config file.
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	cs := NewConfigService().(*configService)
	if path != "" {
		cs.filePath = path
	}
	cs.bus = bus
	return cs
}

// Path returns the file Load and Save use
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when the
// file does not exist, then applies environment overrides
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		loaded, err := cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:       cs.filePath,
			APIBaseURL: cfg.APIBaseURL,
			WebBaseURL: cfg.WebBaseURL,
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
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

// ApplyEnv overlays MIDLO_* environment variables onto cfg
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.APIBaseURL != "" {
		cfg.APIBaseURL = env.APIBaseURL
	}
	if env.WebBaseURL != "" {
		cfg.WebBaseURL = env.WebBaseURL
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.LogFile = env.LogFile
	}
	if env.Debounce > 0 {
		cfg.Suggest.Debounce = Duration{env.Debounce}
	}
	if env.HistoryPath != "" {
		cfg.History.Path = env.HistoryPath
	}
	return nil
}

// SuggestOptions converts the autocomplete settings into fetcher options
func (c *Config) SuggestOptions() suggest.Options {
	opts := suggest.DefaultOptions()
	if c.Suggest.Debounce.Duration > 0 {
		opts.Debounce = c.Suggest.Debounce.Duration
	}
	if c.Suggest.BlurGrace.Duration > 0 {
		opts.BlurGrace = c.Suggest.BlurGrace.Duration
	}
	if c.Suggest.MinQueryLength > 0 {
		opts.MinQueryLength = c.Suggest.MinQueryLength
	}
	if c.Suggest.MaxSuggestions > 0 {
		opts.MaxSuggestions = c.Suggest.MaxSuggestions
	}
	return opts
}

// APIClientConfig converts the backend settings into client config
func (c *Config) APIClientConfig() api.Config {
	return api.Config{
		BaseURL:   c.APIBaseURL,
		Timeout:   c.API.Timeout.Duration,
		RateLimit: c.API.RateLimit,
		Burst:     c.API.Burst,
	}
}

// HistoryPath returns the history database path
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(Dir(), "history.db")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    1,
		APIBaseURL: api.DefaultBaseURL,
		WebBaseURL: share.DefaultWebBaseURL,
		LogLevel:   "info",
		Suggest: SuggestConfig{
			Debounce:       Duration{suggest.DefaultDebounce},
			BlurGrace:      Duration{suggest.DefaultBlurGrace},
			MinQueryLength: suggest.DefaultMinQueryLength,
			MaxSuggestions: suggest.DefaultMaxSuggestions,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    100,
		},
		Share: ShareConfig{
			Addr:      ":8787",
			CacheSize: 512,
			CacheTTL:  Duration{10 * time.Minute},
		},
		API: APIConfig{
			Timeout: Duration{15 * time.Second},
		},
	}
}
