// Package catalog loads shift catalogs from the embedded samples, YAML or
// JSON files, or a Postgres table.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/crewsched/core/model"
)

//go:embed data/*.yaml
var samples embed.FS

// ErrUnknownInstance is returned for an embedded catalog name that does not exist.
var ErrUnknownInstance = errors.New("unknown catalog instance")

// Source loads a catalog.
type Source interface {
	Load(ctx context.Context) (model.Catalog, error)
}

// Config selects the catalog source. File wins over Postgres, which wins
// over the embedded instance.
type Config struct {
	Instance string `json:"instance"`
	File     string `json:"file"`
	// PostgresDSN with Name reads the catalog from the crew_shifts table.
	PostgresDSN string `json:"postgres_dsn"`
	Name        string `json:"name"`
}

// SetDefaults selects the small embedded instance when nothing is set.
func (c *Config) SetDefaults() {
	if c.Instance == "" {
		c.Instance = "small"
	}
}

// Validate checks that the selected source is usable.
func (c Config) Validate() error {
	if c.File != "" {
		return nil
	}
	if c.PostgresDSN != "" {
		if c.Name == "" {
			return fmt.Errorf("catalog.name is required with catalog.postgres_dsn")
		}
		return nil
	}
	for _, n := range Instances() {
		if n == c.Instance {
			return nil
		}
	}
	return fmt.Errorf("%w %q (known: %s)", ErrUnknownInstance, c.Instance, strings.Join(Instances(), ", "))
}

// NewSource returns the source described by cfg.
func NewSource(cfg Config) Source {
	switch {
	case cfg.File != "":
		return FileSource{Path: cfg.File}
	case cfg.PostgresDSN != "":
		return &PostgresSource{DSN: cfg.PostgresDSN, Name: cfg.Name}
	default:
		return EmbeddedSource{Name: cfg.Instance}
	}
}

// Instances lists the embedded catalog names.
func Instances() []string {
	entries, _ := samples.ReadDir("data")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// EmbeddedSource reads one of the sample catalogs shipped with the binary.
type EmbeddedSource struct {
	Name string
}

func (s EmbeddedSource) Load(context.Context) (model.Catalog, error) {
	data, err := samples.ReadFile("data/" + s.Name + ".yaml")
	if err != nil {
		return model.Catalog{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownInstance, s.Name, strings.Join(Instances(), ", "))
	}
	return Decode(data, yaml.Unmarshal, s.Name)
}

// FileSource reads a catalog from a YAML or JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) (model.Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return model.Catalog{}, err
	}
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		unmarshal = json.Unmarshal
	}
	name := strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
	cat, err := Decode(data, unmarshal, name)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return cat, nil
}

// Decode parses a catalog document, derives missing minute offsets from the
// HH:MM display strings, and validates the result. fallbackName is used when
// the document has no name.
func Decode(data []byte, unmarshal func([]byte, any) error, fallbackName string) (model.Catalog, error) {
	var cat model.Catalog
	if err := unmarshal(data, &cat); err != nil {
		return model.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if cat.Name == "" {
		cat.Name = fallbackName
	}
	for i := range cat.Shifts {
		s := &cat.Shifts[i]
		if s.StartMinute != 0 || s.EndMinute != 0 || s.DisplayStart == "" {
			continue
		}
		var err error
		if s.StartMinute, err = ParseMinute(s.DisplayStart); err != nil {
			return model.Catalog{}, fmt.Errorf("shift %d: %w", i, err)
		}
		if s.EndMinute, err = ParseMinute(s.DisplayEnd); err != nil {
			return model.Catalog{}, fmt.Errorf("shift %d: %w", i, err)
		}
	}
	cat = cat.Normalize()
	if err := cat.Validate(); err != nil {
		return model.Catalog{}, err
	}
	return cat, nil
}

// ParseMinute converts an HH:MM string to a minute offset. Hours may exceed
// 23 for shifts ending after midnight.
func ParseMinute(v string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", model.ErrInvalidShift, v)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 {
		return 0, fmt.Errorf("%w: bad hour in %q", model.ErrInvalidShift, v)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", model.ErrInvalidShift, v)
	}
	return hh*60 + mm, nil
}

// Write encodes the catalog as YAML.
func Write(path string, cat model.Catalog) error {
	data, err := yaml.Marshal(cat)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
