package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"neurowire/internal/model"
	"neurowire/internal/stats"
)

type showOutput struct {
	Run        model.RunRecord         `json:"run"`
	Snapshots  []int                   `json:"snapshots"`
	Summary    stats.Summary           `json:"summary"`
	Generation *model.GenerationRecord `json:"generation,omitempty"`
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run, its survivor history and a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			number, _ := cmd.Flags().GetInt("generation")
			withDump, _ := cmd.Flags().GetBool("dump")
			tail, _ := cmd.Flags().GetInt("tail")

			client, err := s.client()
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			run, err := client.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			snapshots, err := client.Snapshots(ctx, run.ID)
			if err != nil {
				return err
			}
			history, err := client.SurvivorHistory(ctx, run.ID)
			if err != nil {
				return err
			}
			generation, err := client.Generation(ctx, run.ID, number)
			if err != nil {
				return err
			}

			result := showOutput{Run: run, Snapshots: snapshots, Summary: stats.Summarize(history)}
			if withDump {
				result.Generation = &generation
			}
			if s.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := newPrinter(cmd.OutOrStdout())
			out.printf("%s %s\n", out.label("run id"), run.ID)
			if run.ContinuedFrom != "" {
				out.printf("%s %s\n", out.label("continued from"), run.ContinuedFrom)
			}
			out.printf("%s %s\n", out.label("created"), run.CreatedAtUTC)
			out.printf("%s %dx%d, %s agents, %d turns per generation, predicate %s, extinction %s\n",
				out.label("world"), run.Width, run.Height, humanize.Comma(int64(run.PopulationSize)),
				run.TurnsPerGeneration, run.Predicate, run.Extinction)
			out.printf("%s %d neurons, %d max links, mutation rate %g\n",
				out.label("brain"), run.NeuronCount, run.MaxLinks, run.MutationRate)
			out.printf("%s seed %d, generation %d, %s survivors\n",
				out.label("state"), run.Seed, run.FinalGeneration, humanize.Comma(int64(run.FinalSurvivors)))
			out.printf("%s %v\n", out.label("snapshots"), snapshots)
			if result.Summary.Generations > 0 {
				out.printf("%s best %s at generation %d, mean ratio %.1f%%\n",
					out.label("survivors"), humanize.Comma(int64(result.Summary.BestSurvivors)),
					result.Summary.BestGeneration, result.Summary.MeanRatio*100)
				start := 0
				if tail > 0 && len(history) > tail {
					start = len(history) - tail
				}
				for _, point := range history[start:] {
					out.printf("  %6d  %s\n", point.Generation, out.survivors(point))
				}
			}

			links := 0
			for _, agent := range generation.Generation {
				links += len(agent)
			}
			out.printf("%s generation %d, %s agents, %s links\n",
				out.label("snapshot"), generation.GenerationNumber,
				humanize.Comma(int64(len(generation.Generation))), humanize.Comma(int64(links)))
			if withDump {
				for i, agent := range generation.Generation {
					out.printf("  agent %d:", i)
					for _, link := range agent {
						out.printf(" %s->%s(%.3f)", link.Sensor, link.Action, link.LinkStrength)
					}
					fmt.Fprintln(out.out)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("generation", -1, "Snapshot generation to show (-1 for the latest)")
	cmd.Flags().Bool("dump", false, "Include every agent's links")
	cmd.Flags().Int("tail", 10, "Survivor history lines to print (0 for all)")
	return cmd
}
