package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"arcade-server/arcade"
)

// LoadTuning reads a YAML tuning file over the default configuration.
// Keys absent from the file keep their defaults. An empty path returns
// the defaults unchanged.
func LoadTuning(path string) (arcade.Config, error) {
	cfg := arcade.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}
	return cfg, nil
}
