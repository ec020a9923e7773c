package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied where the config file is silent or invalid. Bad values
// never fail startup; they fall back with a logged warning.
const (
	DefaultDebounceWindow        = 2 * time.Second
	DefaultMaxConcurrentAnalyses = 2
	DefaultSimilarityThreshold   = 0.4
	DefaultMaxResults            = 5
	DefaultExcerptLines          = 3
	DefaultLongFragmentThreshold = 50
)

// Project describes one watched codebase. Read-only to the core once
// loaded.
type Project struct {
	Name     string `yaml:"name"`
	RootPath string `yaml:"root_path"`

	// DumpPath is the aggregated source dump produced by the external
	// repository-flattening tool for this project.
	DumpPath string `yaml:"dump_path"`

	TriggerPatterns []string `yaml:"trigger_patterns"`

	// DebounceWindowRaw holds the config-file value ("750ms", "2s");
	// DebounceWindow is the parsed form.
	DebounceWindowRaw string        `yaml:"debounce_window"`
	DebounceWindow    time.Duration `yaml:"-"`
}

// Embedding configures the backend fallback chain and query behavior.
type Embedding struct {
	// PreferenceOrder lists backend kinds from most to least preferred:
	// service, sentence, lexical.
	PreferenceOrder []string `yaml:"preference_order"`

	ModelRef   string `yaml:"model_ref"`
	ServiceURL string `yaml:"service_url"`

	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxResults          int     `yaml:"max_results"`
}

// Extraction configures the fragment extractor.
type Extraction struct {
	ExcerptLines          int `yaml:"excerpt_lines"`
	LongFragmentThreshold int `yaml:"long_fragment_threshold"`
}

// Config is the in-memory representation of llmdiver.yaml.
type Config struct {
	IndexPath             string     `yaml:"index_path"`
	MaxConcurrentAnalyses int        `yaml:"max_concurrent_analyses"`
	Embedding             Embedding  `yaml:"embedding"`
	Extraction            Extraction `yaml:"extraction"`
	Projects              []Project  `yaml:"projects"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML config file. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv lets the environment override file settings, matching the
// precedence flags > env > file > defaults.
func (c *Config) applyEnv() {
	if v := os.Getenv("LLMDIVER_INDEX_PATH"); v != "" {
		c.IndexPath = v
	}
	if v := os.Getenv("LLMDIVER_SERVICE_URL"); v != "" {
		c.Embedding.ServiceURL = v
	}
	if v := os.Getenv("LLMDIVER_MODEL_REF"); v != "" {
		c.Embedding.ModelRef = v
	}
	if v := os.Getenv("LLMDIVER_BACKENDS"); v != "" {
		c.Embedding.PreferenceOrder = strings.Split(v, ",")
	}
}

// applyDefaults fills zero or invalid values and drops unusable project
// entries. Configuration problems are warnings, never fatal.
func (c *Config) applyDefaults() {
	if c.IndexPath == "" {
		c.IndexPath = DefaultIndexPath()
	}
	if c.MaxConcurrentAnalyses <= 0 {
		c.MaxConcurrentAnalyses = DefaultMaxConcurrentAnalyses
	}
	if c.Embedding.SimilarityThreshold <= 0 || c.Embedding.SimilarityThreshold > 1 {
		c.Embedding.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.Embedding.MaxResults <= 0 {
		c.Embedding.MaxResults = DefaultMaxResults
	}
	if c.Extraction.ExcerptLines <= 0 {
		c.Extraction.ExcerptLines = DefaultExcerptLines
	}
	if c.Extraction.LongFragmentThreshold <= 0 {
		c.Extraction.LongFragmentThreshold = DefaultLongFragmentThreshold
	}

	kept := c.Projects[:0]
	for _, p := range c.Projects {
		if p.RootPath == "" {
			log.Printf("[config] dropping project %q: no root_path", p.Name)
			continue
		}
		if p.Name == "" {
			p.Name = filepath.Base(p.RootPath)
		}
		if p.DebounceWindowRaw != "" {
			window, err := time.ParseDuration(p.DebounceWindowRaw)
			if err != nil || window <= 0 {
				log.Printf("[config] project %s: bad debounce_window %q, using %s", p.Name, p.DebounceWindowRaw, DefaultDebounceWindow)
			} else {
				p.DebounceWindow = window
			}
		}
		if p.DebounceWindow <= 0 {
			p.DebounceWindow = DefaultDebounceWindow
		}
		p.TriggerPatterns = validPatterns(p.Name, p.TriggerPatterns)
		kept = append(kept, p)
	}
	c.Projects = kept
}

// validPatterns drops glob patterns that do not compile. A project with no
// usable pattern matches everything rather than nothing.
func validPatterns(project string, patterns []string) []string {
	kept := patterns[:0]
	for _, pat := range patterns {
		if _, err := filepath.Match(pat, "probe"); err != nil {
			log.Printf("[config] project %s: dropping bad trigger pattern %q: %v", project, pat, err)
			continue
		}
		kept = append(kept, pat)
	}
	return kept
}

// DefaultIndexPath returns the default snapshot location under the user's
// home directory.
func DefaultIndexPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".llmdiver", "index.json")
	}
	return filepath.Join(home, ".llmdiver", "index.json")
}

// DefaultConfigPath returns the default config file location under the
// user's home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".llmdiver", "config.yaml")
	}
	return filepath.Join(home, ".llmdiver", "config.yaml")
}
