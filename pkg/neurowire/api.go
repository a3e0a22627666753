package neurowire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"neurowire/internal/config"
	"neurowire/internal/evo"
	"neurowire/internal/logging"
	"neurowire/internal/model"
	"neurowire/internal/scape"
	"neurowire/internal/stats"
	"neurowire/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "neurowire.db"
)

var (
	ErrRunNotFound        = errors.New("run not found")
	ErrGenerationNotFound = errors.New("generation not found")
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	Logger     *slog.Logger
}

type Client struct {
	store      storage.Store
	exportsDir string
	logger     *slog.Logger
	ready      bool
}

// RunRequest describes one grid world run. Size fields <= 0 take the
// defaults of config.Default. MaxLinks and MutationRate are used as given,
// since 0 is valid for both.
type RunRequest struct {
	Width              int
	Height             int
	Population         int
	TurnsPerGeneration int
	Predicate          string
	Extinction         string
	NeuronCount        int
	MaxLinks           int
	MutationRate       float64
	Generations        int
	Seed               int64
	Workers            int
	// SnapshotEvery persists every Nth generation; the last one is always
	// persisted.
	SnapshotEvery int
	// ContinueRunID starts from the latest snapshot of an earlier run.
	ContinueRunID string
	// InitialDump starts from a dumped population instead of genesis.
	InitialDump *model.GenerationRecord
	// Progress is called after every generation boundary.
	Progress func(scape.GenerationReport)
}

type RunSummary struct {
	RunID           string
	ContinuedFrom   string
	FirstGeneration int
	FinalGeneration int
	FinalSurvivors  int
	Population      int
	Survivors       []model.SurvivorPoint
	Snapshots       []int
	Stats           evo.Stats
}

type ExportRequest struct {
	RunID  string
	Latest bool
	// Generation selects a snapshot; negative exports the latest one.
	Generation int
	OutDir     string
}

type ExportSummary struct {
	RunID      string
	Generation int
	Directory  string
}

func NewClient(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, exportsDir: exportsDir, logger: logger}, nil
}

// RunRequestFromConfig maps a loaded config onto a request.
func RunRequestFromConfig(cfg *config.Config) RunRequest {
	return RunRequest{
		Width:              cfg.World.Width,
		Height:             cfg.World.Height,
		Population:         cfg.World.Population,
		TurnsPerGeneration: cfg.World.TurnsPerGeneration,
		Predicate:          cfg.World.Predicate,
		Extinction:         cfg.World.Extinction,
		NeuronCount:        cfg.Brain.NeuronCount,
		MaxLinks:           cfg.Brain.MaxLinks,
		MutationRate:       cfg.Brain.MutationRate,
		Generations:        cfg.Run.Generations,
		Seed:               cfg.Run.Seed,
		Workers:            cfg.Run.Workers,
		SnapshotEvery:      cfg.Run.SnapshotEvery,
	}
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.ready {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.ready = true
	return nil
}

// Run evolves a grid world for req.Generations generation boundaries and
// persists it. When ctx is cancelled between turns the progress so far is
// persisted and the context error is returned with the summary.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	applyDefaults(&req)
	if req.Generations < 0 {
		return RunSummary{}, fmt.Errorf("generations must be >= 0, got %d", req.Generations)
	}
	if req.SnapshotEvery < 0 {
		return RunSummary{}, fmt.Errorf("snapshot every must be >= 0, got %d", req.SnapshotEvery)
	}
	extinction, err := evo.ParseExtinctionPolicy(req.Extinction)
	if err != nil {
		return RunSummary{}, err
	}

	var start *model.GenerationRecord
	var history []model.SurvivorPoint
	if req.ContinueRunID != "" {
		if req.InitialDump != nil {
			return RunSummary{}, errors.New("use either a run to continue or an initial dump")
		}
		latest, prior, err := c.continuation(ctx, req.ContinueRunID)
		if err != nil {
			return RunSummary{}, err
		}
		start, history = &latest, prior
	} else if req.InitialDump != nil {
		start = req.InitialDump
	}

	runID := uuid.NewString()
	record := model.RunRecord{
		VersionedRecord:    storage.CurrentVersion(),
		ID:                 runID,
		CreatedAtUTC:       storage.FormatTimestamp(time.Now()),
		ContinuedFrom:      req.ContinueRunID,
		Width:              req.Width,
		Height:             req.Height,
		PopulationSize:     req.Population,
		TurnsPerGeneration: req.TurnsPerGeneration,
		Generations:        req.Generations,
		NeuronCount:        req.NeuronCount,
		MaxLinks:           req.MaxLinks,
		MutationRate:       req.MutationRate,
		Predicate:          req.Predicate,
		Extinction:         string(extinction),
		Seed:               req.Seed,
		Workers:            req.Workers,
	}

	var (
		world     *scape.GridWorld
		snapshots []int
	)
	saveSnapshot := func() error {
		generation := world.DumpGeneration()
		generation.VersionedRecord = storage.CurrentVersion()
		generation.RunID = runID
		if err := c.store.SaveGeneration(ctx, generation); err != nil {
			return fmt.Errorf("save generation %d: %w", generation.GenerationNumber, err)
		}
		snapshots = append(snapshots, generation.GenerationNumber)
		c.logger.Debug("generation persisted", "run_id", runID, "generation", generation.GenerationNumber)
		return nil
	}

	world, err = scape.NewGridWorld(scape.GridConfig{
		Width:              req.Width,
		Height:             req.Height,
		PopulationSize:     req.Population,
		TurnsPerGeneration: req.TurnsPerGeneration,
		Predicate:          req.Predicate,
		NeuronCount:        req.NeuronCount,
		MaxLinks:           req.MaxLinks,
		MutationRate:       req.MutationRate,
		Extinction:         extinction,
		Workers:            req.Workers,
		Seed:               req.Seed,
		Logger:             c.logger,
		OnGeneration: func(report scape.GenerationReport) error {
			history = append(history, model.SurvivorPoint{
				Generation: report.Generation,
				Survivors:  report.Survivors,
				Population: report.Population,
			})
			if req.SnapshotEvery > 0 && report.Generation%req.SnapshotEvery == 0 {
				if err := saveSnapshot(); err != nil {
					return err
				}
			}
			if req.Progress != nil {
				req.Progress(report)
			}
			return nil
		},
	})
	if err != nil {
		return RunSummary{}, err
	}
	if start != nil {
		if err := world.Resume(*start); err != nil {
			return RunSummary{}, fmt.Errorf("restore starting population: %w", err)
		}
	}

	first := world.Generation()
	record.FinalGeneration = first
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}
	c.logger.Info("run started", "run_id", runID, "generation", first, "population", req.Population, "seed", req.Seed)

	target := first + req.Generations
	var runErr error
	for world.Generation() < target {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := world.DoTurn(); err != nil {
			runErr = err
			break
		}
	}

	// A cancelled context must not prevent the final writes.
	persistCtx := context.WithoutCancel(ctx)
	if len(snapshots) == 0 || snapshots[len(snapshots)-1] != world.Generation() {
		generation := world.DumpGeneration()
		generation.VersionedRecord = storage.CurrentVersion()
		generation.RunID = runID
		if err := c.store.SaveGeneration(persistCtx, generation); err != nil {
			return RunSummary{}, errors.Join(runErr, fmt.Errorf("save final generation: %w", err))
		}
		snapshots = append(snapshots, generation.GenerationNumber)
	}
	if err := c.store.SaveSurvivorHistory(persistCtx, runID, history); err != nil {
		return RunSummary{}, errors.Join(runErr, fmt.Errorf("save survivor history: %w", err))
	}
	record.FinalGeneration = world.Generation()
	record.FinalSurvivors = world.SurvivorsLastGen()
	if err := c.store.SaveRun(persistCtx, record); err != nil {
		return RunSummary{}, errors.Join(runErr, fmt.Errorf("save run: %w", err))
	}

	summary := RunSummary{
		RunID:           runID,
		ContinuedFrom:   req.ContinueRunID,
		FirstGeneration: first,
		FinalGeneration: world.Generation(),
		FinalSurvivors:  world.SurvivorsLastGen(),
		Population:      world.Board().Len(),
		Survivors:       append([]model.SurvivorPoint(nil), history...),
		Snapshots:       snapshots,
		Stats:           world.Board().Stats(),
	}
	c.logger.Info("run finished", "run_id", runID, "generation", summary.FinalGeneration, "survivors", summary.FinalSurvivors)
	return summary, runErr
}

func (c *Client) continuation(ctx context.Context, runID string) (model.GenerationRecord, []model.SurvivorPoint, error) {
	if _, ok, err := c.store.GetRun(ctx, runID); err != nil {
		return model.GenerationRecord{}, nil, err
	} else if !ok {
		return model.GenerationRecord{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	latest, ok, err := c.store.LatestGeneration(ctx, runID)
	if err != nil {
		return model.GenerationRecord{}, nil, err
	}
	if !ok {
		return model.GenerationRecord{}, nil, fmt.Errorf("%w: run %s has no snapshots", ErrGenerationNotFound, runID)
	}
	history, _, err := c.store.GetSurvivorHistory(ctx, runID)
	if err != nil {
		return model.GenerationRecord{}, nil, err
	}
	prior := make([]model.SurvivorPoint, 0, len(history))
	for _, point := range history {
		if point.Generation <= latest.GenerationNumber {
			prior = append(prior, point)
		}
	}
	return latest, prior, nil
}

func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	return c.store.ListRuns(ctx, limit)
}

func (c *Client) GetRun(ctx context.Context, runID string) (model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return model.RunRecord{}, err
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, nil
}

// Generation loads a snapshot of runID. A negative number loads the latest.
func (c *Client) Generation(ctx context.Context, runID string, number int) (model.GenerationRecord, error) {
	if err := c.Init(ctx); err != nil {
		return model.GenerationRecord{}, err
	}
	var (
		generation model.GenerationRecord
		ok         bool
		err        error
	)
	if number < 0 {
		generation, ok, err = c.store.LatestGeneration(ctx, runID)
	} else {
		generation, ok, err = c.store.GetGeneration(ctx, runID, number)
	}
	if err != nil {
		return model.GenerationRecord{}, err
	}
	if !ok {
		return model.GenerationRecord{}, fmt.Errorf("%w: run %s generation %d", ErrGenerationNotFound, runID, number)
	}
	return generation, nil
}

func (c *Client) Snapshots(ctx context.Context, runID string) ([]int, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListGenerations(ctx, runID)
}

func (c *Client) SurvivorHistory(ctx context.Context, runID string) ([]model.SurvivorPoint, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	history, _, err := c.store.GetSurvivorHistory(ctx, runID)
	return history, err
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	if err := c.Init(ctx); err != nil {
		return ExportSummary{}, err
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListRuns(ctx, 1)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(runs) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = runs[0].ID
	}

	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	generation, err := c.Generation(ctx, runID, req.Generation)
	if err != nil {
		return ExportSummary{}, err
	}
	history, err := c.SurvivorHistory(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	dir, err := stats.WriteRunArtifacts(req.OutDir, stats.RunArtifacts{
		Run:        run,
		Generation: generation,
		Survivors:  history,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Generation: generation.GenerationNumber, Directory: filepath.Clean(dir)}, nil
}

func applyDefaults(req *RunRequest) {
	defaults := config.Default()
	if req.Width <= 0 {
		req.Width = defaults.World.Width
	}
	if req.Height <= 0 {
		req.Height = defaults.World.Height
	}
	if req.Population <= 0 {
		req.Population = defaults.World.Population
	}
	if req.TurnsPerGeneration <= 0 {
		req.TurnsPerGeneration = defaults.World.TurnsPerGeneration
	}
	if req.Predicate == "" {
		req.Predicate = defaults.World.Predicate
	}
	if req.Extinction == "" {
		req.Extinction = defaults.World.Extinction
	}
	if req.NeuronCount <= 0 {
		req.NeuronCount = defaults.Brain.NeuronCount
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
}
