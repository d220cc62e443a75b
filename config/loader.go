package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// DefaultPath is used when no configuration file path is given on the
// command line.
const DefaultPath = "data/configuration.toml"

// Load reads, decodes and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration file as TOML: %w", err)
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Logging.ConsoleLevel == "" {
		cfg.Logging.ConsoleLevel = "info"
	}
	if cfg.LPP.Recording.SnapshotInterval.Duration == 0 {
		cfg.LPP.Recording.SnapshotInterval.Duration = 6 * time.Hour
	}

	return &cfg, nil
}
