package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.World.Width != 200 || cfg.World.Population != 1000 || cfg.Brain.NeuronCount != 4 || cfg.Brain.MaxLinks != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neurowire.yaml")
	content := `
world:
  width: 64
  predicate: border
brain:
  mutation_rate: 0.2
store:
  kind: sqlite
  path: runs.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.Width != 64 || cfg.World.Height != 200 {
		t.Fatalf("expected width override and default height, got %dx%d", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.Predicate != "border" || cfg.Brain.MutationRate != 0.2 || cfg.Store.Kind != "sqlite" || cfg.Store.Path != "runs.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Brain.NeuronCount != 4 {
		t.Fatalf("expected default neuron count, got %d", cfg.Brain.NeuronCount)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("world: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEUROWIRE_POPULATION", "42")
	t.Setenv("NEUROWIRE_MUTATION_RATE", "0.5")
	t.Setenv("NEUROWIRE_SEED", "-9")
	t.Setenv("NEUROWIRE_STORE", "sqlite")
	t.Setenv("NEUROWIRE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.Population != 42 || cfg.Brain.MutationRate != 0.5 || cfg.Run.Seed != -9 {
		t.Fatalf("unexpected numeric overrides: %+v", cfg)
	}
	if cfg.Store.Kind != "sqlite" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected string overrides: %+v", cfg)
	}
}

func TestEnvOverrideParseError(t *testing.T) {
	t.Setenv("NEUROWIRE_WORKERS", "many")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "NEUROWIRE_WORKERS") {
		t.Fatalf("expected workers parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }},
		{"zero population", func(c *Config) { c.World.Population = 0 }},
		{"zero turns", func(c *Config) { c.World.TurnsPerGeneration = 0 }},
		{"bad extinction", func(c *Config) { c.World.Extinction = "ignore" }},
		{"zero neurons", func(c *Config) { c.Brain.NeuronCount = 0 }},
		{"negative links", func(c *Config) { c.Brain.MaxLinks = -1 }},
		{"rate above one", func(c *Config) { c.Brain.MutationRate = 1.01 }},
		{"negative generations", func(c *Config) { c.Run.Generations = -1 }},
		{"negative workers", func(c *Config) { c.Run.Workers = -1 }},
		{"negative snapshots", func(c *Config) { c.Run.SnapshotEvery = -1 }},
		{"unknown store", func(c *Config) { c.Store.Kind = "redis" }},
		{"sqlite without path", func(c *Config) { c.Store.Kind = "sqlite"; c.Store.Path = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Run.Seed = 77
	cfg.World.Predicate = "left-half"
	if err := cfg.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
