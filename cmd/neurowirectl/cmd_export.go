package main

import (
	"errors"

	"github.com/spf13/cobra"

	"neurowire/pkg/neurowire"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Write a run's config, dump.json and survivor CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			latest, _ := cmd.Flags().GetBool("latest")
			number, _ := cmd.Flags().GetInt("generation")
			outDir, _ := cmd.Flags().GetString("out")

			req := neurowire.ExportRequest{Latest: latest, Generation: number, OutDir: outDir}
			if len(args) == 1 {
				req.RunID = args[0]
			}
			if req.RunID == "" && !req.Latest {
				return errors.New("export requires a run id or --latest")
			}

			client, err := s.client()
			if err != nil {
				return err
			}
			defer client.Close()

			exported, err := client.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"run_id":     exported.RunID,
					"generation": exported.Generation,
					"directory":  exported.Directory,
				})
			}
			out := newPrinter(cmd.OutOrStdout())
			out.printf("%s run %s generation %d to %s\n",
				out.au.Green("exported"), exported.RunID, exported.Generation, exported.Directory)
			return nil
		},
	}
	cmd.Flags().Bool("latest", false, "Export the newest run")
	cmd.Flags().Int("generation", -1, "Snapshot generation to export (-1 for the latest)")
	cmd.Flags().String("out", "", "Export directory (defaults to export.dir)")
	return cmd
}
