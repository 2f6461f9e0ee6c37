package config

import (
	"fmt"
	"strings"
)

// LoggingConfig sets the minimum log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}
