package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy selects how a source's candidate item URLs are discovered
type Strategy string

const (
	StrategyTable   Strategy = "table"
	StrategySitemap Strategy = "sitemap"
)

const (
	defaultEmbedSelector = "object.wp-block-file__embed"
	defaultDateFormat    = "2 Jan 2006"
)

// SourceConfig describes one harvested source. Each source gets its own
// store file and artifact directory so its items are isolated.
type SourceConfig struct {
	Name     string   `yaml:"name"`
	Strategy Strategy `yaml:"strategy"`

	// ListingURL is the table page to scrape (table strategy).
	ListingURL string `yaml:"listing_url"`
	// SitemapTemplate is a printf template with one %d page index
	// (sitemap strategy), e.g. https://example.my/wp-sitemap-posts-post-%d.xml
	SitemapTemplate string `yaml:"sitemap_template"`

	// ContentSelector locates the main content region of a detail page.
	// A sitemap source may leave it empty to record URLs only.
	ContentSelector string `yaml:"content_selector"`
	// EmbedSelector locates an embedded downloadable document inside the
	// content region; its "data" attribute holds the document URL.
	EmbedSelector string `yaml:"embed_selector"`
	// DateFormat is the Go layout the source publishes dates in.
	DateFormat string `yaml:"date_format"`

	ArtifactDir string `yaml:"artifact_dir"`
	StorePath   string `yaml:"store_path"`

	// InsecureSkipVerify disables TLS certificate validation for this
	// source. Some government sites serve certificates the default trust
	// store rejects; this must be opted into per source, never silently.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// StopAtLatest halts the run at the first scraped item whose
	// title+date match the newest stored record, instead of checking
	// every URL. Only correct for listings that are strictly
	// time-ordered with no backfilled edits, so off by default.
	StopAtLatest bool `yaml:"stop_at_latest"`
}

// Config is the YAML configuration file structure
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadConfig loads and validates the sources configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if len(config.Sources) == 0 {
		return nil, fmt.Errorf("config %s defines no sources", path)
	}

	for i := range config.Sources {
		config.Sources[i].applyDefaults()
		if err := config.Sources[i].validate(); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i+1, config.Sources[i].Name, err)
		}
	}

	return &config, nil
}

// Source returns the named source configuration, or an error listing the
// available names.
func (c *Config) Source(name string) (*SourceConfig, error) {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i], nil
		}
	}
	names := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		names = append(names, s.Name)
	}
	return nil, fmt.Errorf("unknown source %q (configured: %v)", name, names)
}

func (s *SourceConfig) applyDefaults() {
	if s.EmbedSelector == "" {
		s.EmbedSelector = defaultEmbedSelector
	}
	if s.DateFormat == "" {
		s.DateFormat = defaultDateFormat
	}
	if s.ArtifactDir == "" {
		s.ArtifactDir = "artifacts/" + s.Name
	}
	if s.StorePath == "" {
		s.StorePath = "db/" + s.Name + ".db"
	}
}

func (s *SourceConfig) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch s.Strategy {
	case StrategyTable:
		if s.ListingURL == "" {
			return fmt.Errorf("listing_url is required for the table strategy")
		}
		if s.ContentSelector == "" {
			return fmt.Errorf("content_selector is required for the table strategy")
		}
	case StrategySitemap:
		if s.SitemapTemplate == "" {
			return fmt.Errorf("sitemap_template is required for the sitemap strategy")
		}
	default:
		return fmt.Errorf("unknown strategy %q (want table or sitemap)", s.Strategy)
	}
	return nil
}
