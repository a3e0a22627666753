package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"neurowire/internal/model"
	"neurowire/internal/scape"
	"neurowire/internal/stats"
	"neurowire/pkg/neurowire"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a grid world population",
		Long: `Run a grid world for a number of generations and persist its snapshots.

Flags override the config file and the NEUROWIRE_* environment. Interrupting
the run stores the generations reached so far.`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
	cmd.Flags().Int("width", 0, "Grid width")
	cmd.Flags().Int("height", 0, "Grid height")
	cmd.Flags().Int("population", 0, "Population size")
	cmd.Flags().Int("turns", 0, "Turns per generation")
	cmd.Flags().String("predicate", "", "Survival predicate: "+fmt.Sprint(scape.ListPredicates()))
	cmd.Flags().String("extinction", "", "Extinction policy: fail or reseed")
	cmd.Flags().Int("neurons", 0, "Internal neurons per agent")
	cmd.Flags().Int("max-links", 0, "Maximum links per agent")
	cmd.Flags().Float64("mutation-rate", 0, "Mutation probability in [0, 1]")
	cmd.Flags().Int("generations", 0, "Generations to run")
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().Int("workers", 0, "Tick workers")
	cmd.Flags().Int("snapshot-every", 0, "Persist every Nth generation (0 keeps only the last)")
	cmd.Flags().String("continue", "", "Continue from the latest snapshot of a run id")
	cmd.Flags().String("from-dump", "", "Start from a dump.json file")
	cmd.Flags().Bool("quiet", false, "Only print the final summary")
	return cmd
}

type runOutput struct {
	RunID           string                `json:"run_id"`
	ContinuedFrom   string                `json:"continued_from,omitempty"`
	FirstGeneration int                   `json:"first_generation"`
	FinalGeneration int                   `json:"final_generation"`
	FinalSurvivors  int                   `json:"final_survivors"`
	Population      int                   `json:"population"`
	MeanLinks       float64               `json:"mean_links"`
	Snapshots       []int                 `json:"snapshots"`
	Summary         stats.Summary         `json:"summary"`
	Interrupted     bool                  `json:"interrupted,omitempty"`
	Survivors       []model.SurvivorPoint `json:"survivors,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, s); err != nil {
		return err
	}
	req := neurowire.RunRequestFromConfig(s.cfg)
	req.ContinueRunID, _ = cmd.Flags().GetString("continue")
	if dumpPath, _ := cmd.Flags().GetString("from-dump"); dumpPath != "" {
		record, err := stats.ReadDump(dumpPath)
		if err != nil {
			return err
		}
		req.InitialDump = &record
	}

	out := newPrinter(cmd.OutOrStdout())
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet && !s.jsonOut {
		req.Progress = func(report scape.GenerationReport) {
			point := model.SurvivorPoint{Generation: report.Generation, Survivors: report.Survivors, Population: report.Population}
			out.printf("%s %6d  %s %s  %s %.2f\n",
				out.label("gen"), report.Generation,
				out.label("survivors"), out.survivors(point),
				out.label("mean links"), report.Stats.MeanLinks)
		}
	}

	client, err := s.client()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	summary, err := client.Run(ctx, req)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && (!interrupted || summary.RunID == "") {
		return err
	}

	result := runOutput{
		RunID:           summary.RunID,
		ContinuedFrom:   summary.ContinuedFrom,
		FirstGeneration: summary.FirstGeneration,
		FinalGeneration: summary.FinalGeneration,
		FinalSurvivors:  summary.FinalSurvivors,
		Population:      summary.Population,
		MeanLinks:       summary.Stats.MeanLinks,
		Snapshots:       summary.Snapshots,
		Summary:         stats.Summarize(summary.Survivors),
		Interrupted:     interrupted,
	}
	if s.jsonOut {
		result.Survivors = summary.Survivors
		return writeJSON(cmd.OutOrStdout(), result)
	}

	status := out.au.Green("finished")
	if interrupted {
		status = out.au.Yellow("interrupted")
	}
	out.printf("%s %s in %s\n", out.label("run"), status, time.Since(started).Round(time.Millisecond))
	out.printf("%s %s\n", out.label("run id"), result.RunID)
	if result.ContinuedFrom != "" {
		out.printf("%s %s\n", out.label("continued from"), result.ContinuedFrom)
	}
	out.printf("%s %d -> %d\n", out.label("generations"), result.FirstGeneration, result.FinalGeneration)
	out.printf("%s %s\n", out.label("population"), humanize.Comma(int64(result.Population)))
	if n := len(summary.Survivors); n > 0 {
		out.printf("%s %s\n", out.label("last survivors"), out.survivors(summary.Survivors[n-1]))
		out.printf("%s %d (%s survivors)\n", out.label("best generation"),
			result.Summary.BestGeneration, humanize.Comma(int64(result.Summary.BestSurvivors)))
	}
	out.printf("%s %v\n", out.label("snapshots"), result.Snapshots)
	return nil
}

// applyRunFlags copies explicitly set run flags onto the loaded config and
// validates the result.
func applyRunFlags(cmd *cobra.Command, s *settings) error {
	flags := cmd.Flags()
	ints := []struct {
		name   string
		target *int
	}{
		{"width", &s.cfg.World.Width},
		{"height", &s.cfg.World.Height},
		{"population", &s.cfg.World.Population},
		{"turns", &s.cfg.World.TurnsPerGeneration},
		{"neurons", &s.cfg.Brain.NeuronCount},
		{"max-links", &s.cfg.Brain.MaxLinks},
		{"generations", &s.cfg.Run.Generations},
		{"workers", &s.cfg.Run.Workers},
		{"snapshot-every", &s.cfg.Run.SnapshotEvery},
	}
	for _, entry := range ints {
		if flags.Changed(entry.name) {
			*entry.target, _ = flags.GetInt(entry.name)
		}
	}
	if flags.Changed("predicate") {
		s.cfg.World.Predicate, _ = flags.GetString("predicate")
	}
	if flags.Changed("extinction") {
		s.cfg.World.Extinction, _ = flags.GetString("extinction")
	}
	if flags.Changed("mutation-rate") {
		s.cfg.Brain.MutationRate, _ = flags.GetFloat64("mutation-rate")
	}
	if flags.Changed("seed") {
		s.cfg.Run.Seed, _ = flags.GetInt64("seed")
	}
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid run settings: %w", err)
	}
	return nil
}
