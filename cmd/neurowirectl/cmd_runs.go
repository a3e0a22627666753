package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			client, err := s.client()
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := client.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs stored.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tCREATED\tGENERATION\tSURVIVORS\tPOPULATION\tPREDICATE\tSEED")
			for _, run := range runs {
				created := run.CreatedAtUTC
				if t, err := time.Parse(time.RFC3339Nano, run.CreatedAtUTC); err == nil {
					created = humanize.Time(t)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%d\n",
					run.ID, created, run.FinalGeneration,
					humanize.Comma(int64(run.FinalSurvivors)),
					humanize.Comma(int64(run.PopulationSize)),
					run.Predicate, run.Seed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum runs to list")
	return cmd
}
