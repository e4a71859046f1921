// Package config loads the happi-to-confluence configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfluenceURL   = "CONFLUENCE_URL"
	EnvConfluenceToken = "CONFLUENCE_TOKEN"
	EnvRedisAddr       = "HAPPI_TO_CONFLUENCE_REDIS_ADDR"
	EnvLogLevel        = "HAPPI_TO_CONFLUENCE_LOG_LEVEL"
)

// Config is the complete configuration of one run. It is read once and not
// modified afterwards.
type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
	Production Target           `yaml:"production"`
	Test       Target           `yaml:"test"`

	// Inventory is the whatrecord happi plugin JSON export.
	Inventory     string `yaml:"inventory"`
	TemplatesDir  string `yaml:"templates_dir"`
	HierarchyFile string `yaml:"hierarchy_file,omitempty"`
	ClassCatalog  string `yaml:"class_catalog,omitempty"`
	// SourcePath receives the existing/, new/ and diff/ audit artifacts.
	SourcePath string `yaml:"source_path"`
	SpoolPath  string `yaml:"spool_path"`
	StateFile  string `yaml:"state_file"`

	// RecordSelector is a JSONPath selecting an item's records.
	RecordSelector string `yaml:"record_selector"`

	PageTitleMarker string `yaml:"page_title_marker"`
	UserPageSuffix  string `yaml:"user_page_suffix"`

	Labels  LabelsConfig  `yaml:"labels"`
	Related RelatedConfig `yaml:"related"`
	Redis   RedisConfig   `yaml:"redis"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConfluenceConfig locates the wiki.
type ConfluenceConfig struct {
	URL string `yaml:"url"`
	// Token is a personal access token. Prefer the CONFLUENCE_TOKEN
	// environment variable over storing it in the file.
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Target is a space and documentation root to generate into.
type Target struct {
	Space     string `yaml:"space"`
	RootTitle string `yaml:"root_title"`
	// Limit caps processed entities. 0 means no limit.
	Limit int `yaml:"limit"`
}

// LabelsConfig names the labels the tool reads and writes.
type LabelsConfig struct {
	Generated   string `yaml:"generated"`
	NoOverwrite string `yaml:"no_overwrite"`
}

// RelatedConfig tunes the related-page search.
type RelatedConfig struct {
	Limit int `yaml:"limit"`
}

// RedisConfig enables the shared related-page cache when Addr is set.
type RedisConfig struct {
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// Textfile is written after every run for the node_exporter.
	Textfile string `yaml:"textfile"`
	// Listen serves /metrics while watching, e.g. ":2112".
	Listen string `yaml:"listen"`
}

// WatchConfig tunes the template watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The loading order is defaults, then the file, then the environment. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with the defaults of the SLAC deployment.
func Default() *Config {
	return &Config{
		Confluence: ConfluenceConfig{
			URL:     "https://confluence.slac.stanford.edu",
			Timeout: 30 * time.Second,
		},
		Production: Target{
			Space:     "PCDS",
			RootTitle: "Typhos Documentation Root",
		},
		Test: Target{
			Space:     "~klauer",
			RootTitle: "Typhos Documentation Root",
			Limit:     2,
		},
		Inventory:       "happi_info.json",
		TemplatesDir:    "templates",
		SourcePath:      "source",
		SpoolPath:       "spool",
		StateFile:       ".happi-to-confluence/state.json",
		RecordSelector:  "$._whatrecord.records[*]",
		PageTitleMarker: " (Typhos)",
		UserPageSuffix:  " - Notes",
		Labels: LabelsConfig{
			Generated:   "happi-to-confluence",
			NoOverwrite: "no-overwrite",
		},
		Related: RelatedConfig{Limit: 5},
		Redis:   RedisConfig{TTL: 24 * time.Hour},
		Watch:   WatchConfig{Debounce: 500 * time.Millisecond},
		Logging: LoggingConfig{Level: "info"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvConfluenceURL); v != "" {
		cfg.Confluence.URL = v
	}
	if v := os.Getenv(EnvConfluenceToken); v != "" {
		cfg.Confluence.Token = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
// The token is not checked here; dry runs do without it.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Confluence.URL)
	if c.Confluence.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("confluence.url must be an http(s) URL, got %q", c.Confluence.URL))
	}
	if c.Confluence.Timeout <= 0 {
		errs = append(errs, errors.New("confluence.timeout must be positive"))
	}

	for _, target := range []struct {
		name string
		t    Target
	}{{"production", c.Production}, {"test", c.Test}} {
		name, t := target.name, target.t
		if t.Space == "" || t.RootTitle == "" {
			errs = append(errs, fmt.Errorf("%s.space and %s.root_title are required", name, name))
		}
		if t.Limit < 0 {
			errs = append(errs, fmt.Errorf("%s.limit must not be negative", name))
		}
	}

	if c.Inventory == "" {
		errs = append(errs, errors.New("inventory is required"))
	}
	if c.TemplatesDir == "" {
		errs = append(errs, errors.New("templates_dir is required"))
	}
	if _, err := jp.ParseString(c.RecordSelector); c.RecordSelector != "" && err != nil {
		errs = append(errs, fmt.Errorf("record_selector: %w", err))
	}
	if c.Labels.Generated == "" {
		errs = append(errs, errors.New("labels.generated is required"))
	}
	if c.Labels.Generated == c.Labels.NoOverwrite {
		errs = append(errs, errors.New("labels.generated and labels.no_overwrite must differ"))
	}
	if c.Related.Limit <= 0 {
		errs = append(errs, errors.New("related.limit must be positive"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Target returns the production or the test target.
func (c *Config) Target(production bool) Target {
	if production {
		return c.Production
	}
	return c.Test
}
