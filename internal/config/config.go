// Package config loads run settings from defaults, an optional YAML file and
// NEUROWIRE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	World   WorldConfig   `json:"world" yaml:"world"`
	Brain   BrainConfig   `json:"brain" yaml:"brain"`
	Run     RunConfig     `json:"run" yaml:"run"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

type WorldConfig struct {
	Width              int    `json:"width" yaml:"width"`
	Height             int    `json:"height" yaml:"height"`
	Population         int    `json:"population" yaml:"population"`
	TurnsPerGeneration int    `json:"turns_per_generation" yaml:"turns_per_generation"`
	Predicate          string `json:"predicate" yaml:"predicate"`
	// Extinction is "fail" or "reseed".
	Extinction string `json:"extinction" yaml:"extinction"`
}

type BrainConfig struct {
	NeuronCount  int     `json:"neuron_count" yaml:"neuron_count"`
	MaxLinks     int     `json:"max_links" yaml:"max_links"`
	MutationRate float64 `json:"mutation_rate" yaml:"mutation_rate"`
}

type RunConfig struct {
	Generations int   `json:"generations" yaml:"generations"`
	Seed        int64 `json:"seed" yaml:"seed"`
	Workers     int   `json:"workers" yaml:"workers"`
	// SnapshotEvery persists a generation every N boundaries; 0 keeps only
	// the final one.
	SnapshotEvery int `json:"snapshot_every" yaml:"snapshot_every"`
}

type StoreConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type ExportConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:              200,
			Height:             200,
			Population:         1000,
			TurnsPerGeneration: 60,
			Predicate:          "right-half",
			Extinction:         "reseed",
		},
		Brain: BrainConfig{
			NeuronCount:  4,
			MaxLinks:     10,
			MutationRate: 0.01,
		},
		Run: RunConfig{
			Generations:   50,
			Seed:          1,
			Workers:       1,
			SnapshotEvery: 10,
		},
		Store: StoreConfig{
			Kind: "memory",
			Path: "neurowire.db",
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults, overlaid by path when it is not empty, then by
// the environment. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileConfig
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.World.Population <= 0 {
		return fmt.Errorf("population must be > 0, got %d", c.World.Population)
	}
	if c.World.TurnsPerGeneration <= 0 {
		return fmt.Errorf("turns_per_generation must be > 0, got %d", c.World.TurnsPerGeneration)
	}
	if c.World.Extinction != "fail" && c.World.Extinction != "reseed" {
		return fmt.Errorf("invalid extinction policy: %s (valid: fail, reseed)", c.World.Extinction)
	}
	if c.Brain.NeuronCount <= 0 {
		return fmt.Errorf("neuron_count must be > 0, got %d", c.Brain.NeuronCount)
	}
	if c.Brain.MaxLinks < 0 {
		return fmt.Errorf("max_links must be >= 0, got %d", c.Brain.MaxLinks)
	}
	if !(c.Brain.MutationRate >= 0 && c.Brain.MutationRate <= 1) {
		return fmt.Errorf("mutation_rate must be between 0 and 1, got %f", c.Brain.MutationRate)
	}
	if c.Run.Generations < 0 {
		return fmt.Errorf("generations must be >= 0, got %d", c.Run.Generations)
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Run.Workers)
	}
	if c.Run.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot_every must be >= 0, got %d", c.Run.SnapshotEvery)
	}

	switch c.Store.Kind {
	case "", "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("sqlite store requires a path")
		}
	default:
		return fmt.Errorf("invalid store kind: %s (valid: memory, sqlite)", c.Store.Kind)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true, "warn": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, warn, or empty for default)", c.Logging.Level)
	}
	return nil
}

func applyEnvOverrides(c *Config) error {
	ints := []struct {
		key    string
		target *int
	}{
		{"NEUROWIRE_WIDTH", &c.World.Width},
		{"NEUROWIRE_HEIGHT", &c.World.Height},
		{"NEUROWIRE_POPULATION", &c.World.Population},
		{"NEUROWIRE_TURNS_PER_GENERATION", &c.World.TurnsPerGeneration},
		{"NEUROWIRE_NEURON_COUNT", &c.Brain.NeuronCount},
		{"NEUROWIRE_MAX_LINKS", &c.Brain.MaxLinks},
		{"NEUROWIRE_GENERATIONS", &c.Run.Generations},
		{"NEUROWIRE_WORKERS", &c.Run.Workers},
		{"NEUROWIRE_SNAPSHOT_EVERY", &c.Run.SnapshotEvery},
	}
	for _, entry := range ints {
		if v := os.Getenv(entry.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", entry.key, err)
			}
			*entry.target = n
		}
	}

	strs := []struct {
		key    string
		target *string
	}{
		{"NEUROWIRE_PREDICATE", &c.World.Predicate},
		{"NEUROWIRE_EXTINCTION", &c.World.Extinction},
		{"NEUROWIRE_STORE", &c.Store.Kind},
		{"NEUROWIRE_DB_PATH", &c.Store.Path},
		{"NEUROWIRE_EXPORT_DIR", &c.Export.Dir},
		{"NEUROWIRE_LOG_LEVEL", &c.Logging.Level},
	}
	for _, entry := range strs {
		if v := os.Getenv(entry.key); v != "" {
			*entry.target = v
		}
	}

	if v := os.Getenv("NEUROWIRE_MUTATION_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("NEUROWIRE_MUTATION_RATE: %w", err)
		}
		c.Brain.MutationRate = f
	}
	if v := os.Getenv("NEUROWIRE_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NEUROWIRE_SEED: %w", err)
		}
		c.Run.Seed = n
	}
	return nil
}
