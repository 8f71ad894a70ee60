package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"ghtrend/internal/trending"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Language struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	Period           string     `yaml:"period"`
	RefreshInterval  string     `yaml:"refresh_interval"`
	SnapshotTTL      string     `yaml:"snapshot_ttl"`
	FetchConcurrency int        `yaml:"fetch_concurrency,omitempty"`
	RetryRounds      *int       `yaml:"retry_rounds,omitempty"`
	Preload          *bool      `yaml:"preload,omitempty"`
	Languages        []Language `yaml:"languages"`
	CustomLanguages  []string   `yaml:"custom_languages,omitempty"`
}

// DefaultPeriod returns the configured trending window, falling back to
// daily for anything unrecognized.
func (c *Config) DefaultPeriod() trending.Period {
	p := trending.Period(c.Period)
	if !p.Valid() {
		return trending.PeriodDaily
	}
	return p
}

// MemoryTTL is how long a fetched listing stays fresh in memory.
func (c *Config) MemoryTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// SnapshotMaxAge is how old a persisted snapshot may be and still be shown.
func (c *Config) SnapshotMaxAge() time.Duration {
	d, err := time.ParseDuration(c.SnapshotTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

func (c *Config) Concurrency() int {
	if c.FetchConcurrency <= 0 {
		return 5
	}
	return c.FetchConcurrency
}

// Retries returns the extra fetch rounds for failed requests; 0 is a valid
// configured value, absence means 1.
func (c *Config) Retries() int {
	if c.RetryRounds == nil {
		return 1
	}
	if *c.RetryRounds < 0 {
		return 0
	}
	return *c.RetryRounds
}

func (c *Config) PreloadEnabled() bool {
	return c.Preload == nil || *c.Preload
}

// EnabledLanguages returns the selected language names in section order,
// with custom languages appended and duplicates removed.
func (c *Config) EnabledLanguages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range c.Languages {
		if l.Enabled && !seen[l.Name] {
			seen[l.Name] = true
			out = append(out, l.Name)
		}
	}
	for _, name := range c.CustomLanguages {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// SetEnabled flips a known language on or off, or appends an unknown one.
func (c *Config) SetEnabled(name string, enabled bool) {
	for i, l := range c.Languages {
		if l.Name == name {
			c.Languages[i].Enabled = enabled
			return
		}
	}
	c.Languages = append(c.Languages, Language{Name: name, Enabled: enabled})
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "ghtrend", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "ghtrend", "ghtrend.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	mergeDefaultLanguages(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config back out, so language picker changes survive the
// session.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// mergeDefaultLanguages appends default languages the user's file doesn't
// mention, keeping the user's entries and their order first.
func mergeDefaultLanguages(cfg, defaults *Config) {
	known := make(map[string]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		known[l.Name] = true
	}
	for _, l := range defaults.Languages {
		if !known[l.Name] {
			// Defaults the user never saw arrive disabled.
			cfg.Languages = append(cfg.Languages, Language{Name: l.Name, Enabled: false})
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Period != "" && !trending.Period(cfg.Period).Valid() {
		return fmt.Errorf("invalid period %q (valid: daily, weekly, monthly)", cfg.Period)
	}
	for i, l := range cfg.Languages {
		if l.Name == "" {
			return fmt.Errorf("language %d: name is required", i)
		}
	}
	if cfg.FetchConcurrency < 0 {
		return fmt.Errorf("fetch_concurrency must be positive, got %d", cfg.FetchConcurrency)
	}
	return nil
}
