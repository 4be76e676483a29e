// Package config loads the matcher configuration: suffix table, synonym
// dictionary, intent patterns, and the content-hash retention window.
// Missing or unparseable config is startup-fatal; an absent optional
// section falls back to the compiled defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keywatchhq/keywatch/pkg/match"
	"github.com/keywatchhq/keywatch/pkg/stem"
	"github.com/keywatchhq/keywatch/pkg/synonym"
)

// Config is the on-disk matcher configuration.
type Config struct {
	Retention string              `yaml:"retention"`
	Suffixes  []string            `yaml:"suffixes"`
	Synonyms  map[string][]string `yaml:"synonyms"`
	Intents   IntentConfig        `yaml:"intents"`
}

// IntentConfig configures the pattern layer.
type IntentConfig struct {
	Phrases []string `yaml:"phrases"`
	Targets []string `yaml:"targets"`
}

// Default returns an empty config: every section resolves to the
// compiled defaults.
func Default() Config {
	return Config{Retention: "24h"}
}

// Load reads a YAML config file. A missing path is fatal by design; use
// Default when running without a file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.RetentionWindow(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RetentionWindow parses the retention duration, defaulting to 24h.
func (c Config) RetentionWindow() (time.Duration, error) {
	if c.Retention == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 0, fmt.Errorf("parse retention %q: %w", c.Retention, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("retention %q must be positive", c.Retention)
	}
	return d, nil
}

// Pipeline builds the match pipeline from this config.
func (c Config) Pipeline() (*match.Pipeline, error) {
	suffixes := stem.DefaultRussian()
	if len(c.Suffixes) > 0 {
		suffixes = stem.New(c.Suffixes)
	}

	synonyms := synonym.DefaultTable()
	if len(c.Synonyms) > 0 {
		synonyms = synonym.Table(c.Synonyms)
	}

	intents := match.DefaultIntents()
	if len(c.Intents.Phrases) > 0 {
		var err error
		intents, err = match.NewIntentSet(c.Intents.Phrases, c.Intents.Targets)
		if err != nil {
			return nil, fmt.Errorf("compile intents: %w", err)
		}
	}

	return match.NewPipeline(suffixes, synonyms, intents), nil
}
