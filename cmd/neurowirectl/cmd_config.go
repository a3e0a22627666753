package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after applying the config file, the NEUROWIRE_*
environment and the global flags. With --write the result is saved instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if path, _ := cmd.Flags().GetString("write"); path != "" {
				if err := s.cfg.WriteFile(path); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			}
			if s.jsonOut {
				return writeJSON(cmd.OutOrStdout(), s.cfg)
			}
			data, err := s.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().String("write", "", "Write the effective config to this path")
	return cmd
}
