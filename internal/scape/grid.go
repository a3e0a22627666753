package scape

import (
	"context"
	"fmt"
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"neurowire/internal/evo"
	"neurowire/internal/logging"
	"neurowire/internal/model"
	"neurowire/internal/rng"
)

type GridConfig struct {
	Width              int
	Height             int
	PopulationSize     int
	TurnsPerGeneration int
	Predicate          string
	NeuronCount        int
	MaxLinks           int
	MutationRate       float64
	Extinction         evo.ExtinctionPolicy
	Workers            int
	Seed               int64
	// Random overrides the source seeded from Seed. It may be shared with
	// other goroutines; the world serializes its draws.
	Random rng.Source
	Logger *slog.Logger
	// OnGeneration runs after every generation boundary. An error stops
	// DoTurn before the tick of that turn.
	OnGeneration func(GenerationReport) error
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		Width:              200,
		Height:             200,
		PopulationSize:     1000,
		TurnsPerGeneration: 60,
		Predicate:          DefaultPredicate,
		NeuronCount:        4,
		MaxLinks:           10,
		MutationRate:       0.01,
		Extinction:         evo.ExtinctionReseed,
		Workers:            1,
	}
}

// GenerationReport describes the population right after a boundary.
type GenerationReport struct {
	Generation   int
	Survivors    int
	Population   int
	Repopulation evo.Repopulation
	Stats        evo.Stats
}

// GridWorld binds a Board to a bounded grid and a shared turn clock.
type GridWorld struct {
	cfg              GridConfig
	clock            *Clock
	board            *evo.Board[Creature]
	predicate        Predicate
	random           rng.Source
	survivorsLastGen int
	logger           *slog.Logger
}

func NewGridWorld(cfg GridConfig) (*GridWorld, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", evo.ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.TurnsPerGeneration <= 0 {
		return nil, fmt.Errorf("%w: turns per generation must be > 0, got %d", evo.ErrInvalidConfig, cfg.TurnsPerGeneration)
	}
	predicate, err := ResolvePredicate(cfg.Predicate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", evo.ErrInvalidConfig, err)
	}
	var random rng.Source = rng.New(cfg.Seed)
	if cfg.Random != nil {
		random = rng.Locked(cfg.Random)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	w := &GridWorld{
		cfg: cfg,
		clock: &Clock{
			MaxTurn: cfg.TurnsPerGeneration,
			MaxX:    cfg.Width - 1,
			MaxY:    cfg.Height - 1,
		},
		predicate: predicate,
		random:    random,
		logger:    logger,
	}
	board, err := evo.NewBoard(evo.Config[Creature]{
		Size:          cfg.PopulationSize,
		NewProperties: w.newCreature,
		Catalogue:     NewCatalogue(opensimplex.NewNormalized(cfg.Seed)),
		NeuronCount:   cfg.NeuronCount,
		MaxLinks:      cfg.MaxLinks,
		MutationRate:  cfg.MutationRate,
		Random:        random,
		Workers:       cfg.Workers,
		Extinction:    cfg.Extinction,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	w.board = board
	return w, nil
}

func (w *GridWorld) newCreature() *Creature {
	return &Creature{
		X:         rng.IntRange(w.random, 0, w.cfg.Width),
		Y:         rng.IntRange(w.random, 0, w.cfg.Height),
		Direction: rng.Choice(w.random, directions[:]),
		Clock:     w.clock,
	}
}

// DoTurn advances the world by one turn. Once the clock has passed
// TurnsPerGeneration the turn runs the boundary first: kill, record the
// survivor count, repopulate, advance the generation.
func (w *GridWorld) DoTurn() error {
	if w.clock.Turn > w.clock.MaxTurn {
		if err := w.endGeneration(); err != nil {
			return err
		}
	}
	w.board.Tick()
	w.clock.Turn++
	if w.logger.Enabled(context.Background(), logging.LevelTrace) {
		w.logger.Log(context.Background(), logging.LevelTrace, "turn",
			"generation", w.clock.Generation,
			"turn", w.clock.Turn,
		)
	}
	return nil
}

func (w *GridWorld) endGeneration() error {
	w.clock.Turn = 0
	w.board.Kill(w.predicate)
	w.survivorsLastGen = w.board.Len()
	if err := w.board.Repopulate(); err != nil {
		return fmt.Errorf("generation %d: %w", w.clock.Generation, err)
	}
	w.clock.Generation++

	report := GenerationReport{
		Generation:   w.clock.Generation,
		Survivors:    w.survivorsLastGen,
		Population:   w.board.Len(),
		Repopulation: w.board.LastRepopulation(),
		Stats:        w.board.Stats(),
	}
	w.logger.Info("generation complete",
		"generation", report.Generation,
		"survivors", report.Survivors,
		"population", report.Population,
		"mean_links", report.Stats.MeanLinks,
	)
	if w.cfg.OnGeneration != nil {
		if err := w.cfg.OnGeneration(report); err != nil {
			return fmt.Errorf("generation %d hook: %w", report.Generation, err)
		}
	}
	return nil
}

// RunGenerations turns the world until n more generation boundaries passed.
func (w *GridWorld) RunGenerations(n int) error {
	target := w.clock.Generation + n
	for w.clock.Generation < target {
		if err := w.DoTurn(); err != nil {
			return err
		}
	}
	return nil
}

func (w *GridWorld) Generation() int {
	return w.clock.Generation
}

func (w *GridWorld) Turn() int {
	return w.clock.Turn
}

func (w *GridWorld) SurvivorsLastGen() int {
	return w.survivorsLastGen
}

func (w *GridWorld) Population() []*Creature {
	return w.board.Population()
}

func (w *GridWorld) Board() *evo.Board[Creature] {
	return w.board
}

func (w *GridWorld) Config() GridConfig {
	return w.cfg
}

// DumpGeneration returns the generation number and the population dump.
func (w *GridWorld) DumpGeneration() model.GenerationRecord {
	return model.GenerationRecord{
		GenerationNumber: w.clock.Generation,
		Survivors:        w.survivorsLastGen,
		Generation:       w.board.Dump(),
	}
}

// Resume restores a dumped generation and its counters. The turn clock
// starts over.
func (w *GridWorld) Resume(record model.GenerationRecord) error {
	if err := w.board.Restore(record.Generation); err != nil {
		return err
	}
	w.clock.Turn = 0
	w.clock.Generation = record.GenerationNumber
	w.survivorsLastGen = record.Survivors
	return nil
}
