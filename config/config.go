package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/crewsched/core/factory"
	"github.com/kilianp07/crewsched/core/metrics"
	"github.com/kilianp07/crewsched/core/model"
	"github.com/kilianp07/crewsched/infra/catalog"
	"github.com/kilianp07/crewsched/infra/mqtt"
)

type Config struct {
	Regulations model.Regulations    `json:"regulations"`
	Solver      SolverConfig         `json:"solver"`
	Catalog     catalog.Config       `json:"catalog"`
	Metrics     metrics.Config       `json:"metrics"`
	MQTT        mqtt.Config          `json:"mqtt"`
	Store       factory.ModuleConfig `json:"store"`
	Sentry      SentryConfig         `json:"sentry"`
	Logging     LoggingConfig        `json:"logging"`
	API         APIConfig            `json:"api"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{Regulations: model.DefaultRegulations()}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Regulations.SetDefaults()
	c.Solver.SetDefaults()
	c.Catalog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
	c.Sentry.SetDefaults()
	if c.Store.Type == "" {
		c.Store.Type = "jsonl"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Regulations.Validate(); err != nil {
		return fmt.Errorf("regulations: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Load reads the file at path, applies K_ prefixed environment overrides
// (K_SOLVER__PARAMS sets solver.params), then defaults and validation. A
// missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			parser, err := parserFor(path)
			if err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Config{Regulations: model.DefaultRegulations()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// LoadDotEnv loads the given .env files into the process environment,
// ".env" when none is given. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
