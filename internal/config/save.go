package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where SaveDefault writes and Load looks second.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SaveDefault writes the config to the user's config directory.
func (c *Config) SaveDefault() error {
	return c.SaveTo(DefaultPath())
}

// SaveTo writes the config to path, validating it first so a written file
// always loads back.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	header := []byte("# tr1engine simulator settings\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
