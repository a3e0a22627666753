package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"neurowire/internal/config"
	"neurowire/internal/logging"
	"neurowire/pkg/neurowire"
)

// settings is the effective configuration of one invocation: config file,
// then NEUROWIRE_* environment, then global flags.
type settings struct {
	cfg     *config.Config
	jsonOut bool
	logger  *slog.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("db-path") {
		cfg.Store.Path, _ = cmd.Flags().GetString("db-path")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	return &settings{
		cfg:     cfg,
		jsonOut: jsonOut,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr(), jsonOut),
	}, nil
}

func (s *settings) client() (*neurowire.Client, error) {
	return neurowire.NewClient(neurowire.Options{
		StoreKind:  s.cfg.Store.Kind,
		DBPath:     s.cfg.Store.Path,
		ExportsDir: s.cfg.Export.Dir,
		Logger:     s.logger,
	})
}
