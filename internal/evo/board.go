package evo

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"neurowire/internal/agent"
	"neurowire/internal/genotype"
	neuroio "neurowire/internal/io"
	"neurowire/internal/logging"
	"neurowire/internal/model"
	"neurowire/internal/nn"
	"neurowire/internal/rng"
)

var (
	ErrInvalidConfig = genotype.ErrInvalidConfig
	ErrExtinct       = errors.New("no survivors to breed from")
	ErrInvariant     = errors.New("population invariant violated")
)

// ExtinctionPolicy decides what Repopulate does when Kill left nobody.
type ExtinctionPolicy string

const (
	ExtinctionFail   ExtinctionPolicy = "fail"
	ExtinctionReseed ExtinctionPolicy = "reseed"
)

func ParseExtinctionPolicy(raw string) (ExtinctionPolicy, error) {
	switch ExtinctionPolicy(raw) {
	case "", ExtinctionFail:
		return ExtinctionFail, nil
	case ExtinctionReseed:
		return ExtinctionReseed, nil
	default:
		return "", fmt.Errorf("%w: unknown extinction policy %q", ErrInvalidConfig, raw)
	}
}

type Config[P any] struct {
	Size          int
	NewProperties func() *P
	Catalogue     *neuroio.Catalogue[P]
	NeuronCount   int
	MaxLinks      int
	MutationRate  float64
	Random        rng.Source
	// Workers > 1 steps disjoint slices of the population concurrently.
	Workers    int
	Extinction ExtinctionPolicy
	Logger     *slog.Logger
}

// Repopulation summarizes the last call to Repopulate.
type Repopulation struct {
	Parents        int  `json:"parents"`
	Offspring      int  `json:"offspring"`
	Inherited      int  `json:"inherited"`
	Mutated        int  `json:"mutated"`
	Synthesized    int  `json:"synthesized"`
	CountMutations int  `json:"count_mutations"`
	Reseeded       bool `json:"reseeded"`
}

type Stats struct {
	Agents     int     `json:"agents"`
	TotalLinks int     `json:"total_links"`
	MinLinks   int     `json:"min_links"`
	MaxLinks   int     `json:"max_links"`
	MeanLinks  float64 `json:"mean_links"`
}

// Board owns one population and drives it through ticks, selection and
// breeding. It is not safe for concurrent use.
type Board[P any] struct {
	cfg      Config[P]
	builder  *genotype.Builder[P]
	entities []*agent.Entity[P]
	last     Repopulation
	logger   *slog.Logger
}

// NewBoard validates cfg and fills the board with Size random agents.
func NewBoard[P any](cfg Config[P]) (*Board[P], error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: size must be > 0, got %d", ErrInvalidConfig, cfg.Size)
	}
	if cfg.NewProperties == nil {
		return nil, fmt.Errorf("%w: properties factory is required", ErrInvalidConfig)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	policy, err := ParseExtinctionPolicy(string(cfg.Extinction))
	if err != nil {
		return nil, err
	}
	cfg.Extinction = policy

	builder, err := genotype.NewBuilder(genotype.Config[P]{
		Catalogue:    cfg.Catalogue,
		NeuronCount:  cfg.NeuronCount,
		MaxLinks:     cfg.MaxLinks,
		MutationRate: cfg.MutationRate,
		Random:       cfg.Random,
	})
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	b := &Board[P]{cfg: cfg, builder: builder, logger: logger}
	if b.entities, err = b.genesis(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board[P]) genesis() ([]*agent.Entity[P], error) {
	entities := make([]*agent.Entity[P], 0, b.cfg.Size)
	for i := 0; i < b.cfg.Size; i++ {
		e, err := b.builder.Random(b.cfg.NewProperties())
		if err != nil {
			return nil, fmt.Errorf("genesis agent %d: %w", i, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// Tick steps every agent once.
func (b *Board[P]) Tick() {
	workers := min(b.cfg.Workers, len(b.entities))
	if workers <= 1 {
		for _, e := range b.entities {
			e.Step()
		}
		return
	}

	chunk := (len(b.entities) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(b.entities); start += chunk {
		part := b.entities[start:min(start+chunk, len(b.entities))]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range part {
				e.Step()
			}
		}()
	}
	wg.Wait()
}

// Kill keeps the agents whose properties satisfy survives, in order.
func (b *Board[P]) Kill(survives func(*P) bool) {
	kept := b.entities[:0]
	for _, e := range b.entities {
		if survives(e.Properties()) {
			kept = append(kept, e)
		}
	}
	clear(b.entities[len(kept):])
	b.entities = kept
}

// Repopulate replaces the survivors with Size offspring. Offspring i breeds
// from survivors i and i+1, wrapping around.
func (b *Board[P]) Repopulate() error {
	parents := b.entities
	if len(parents) == 0 {
		if b.cfg.Extinction != ExtinctionReseed {
			b.last = Repopulation{}
			return ErrExtinct
		}
		entities, err := b.genesis()
		if err != nil {
			return err
		}
		b.entities = entities
		b.last = Repopulation{Offspring: len(entities), Reseeded: true}
		b.logger.Warn("population extinct, reseeded", "size", len(entities))
		return b.checkInvariants()
	}

	summary := Repopulation{Parents: len(parents)}
	next := make([]*agent.Entity[P], 0, b.cfg.Size)
	for i := 0; i < b.cfg.Size; i++ {
		first := parents[i%len(parents)]
		second := parents[(i+1)%len(parents)]
		child, report, err := b.builder.FromParents(b.cfg.NewProperties(), first, second)
		if err != nil {
			return fmt.Errorf("breed offspring %d: %w", i, err)
		}
		next = append(next, child)
		summary.Inherited += report.Inherited
		summary.Mutated += report.Mutated
		summary.Synthesized += report.Synthesized
		if report.CountMutated {
			summary.CountMutations++
		}
	}
	summary.Offspring = len(next)
	b.entities = next
	b.last = summary
	b.logger.Debug("population repopulated",
		"parents", summary.Parents,
		"offspring", summary.Offspring,
		"inherited", summary.Inherited,
		"mutated", summary.Mutated,
		"synthesized", summary.Synthesized,
	)
	return b.checkInvariants()
}

func (b *Board[P]) LastRepopulation() Repopulation {
	return b.last
}

// Population returns the agents' properties in population order.
func (b *Board[P]) Population() []*P {
	out := make([]*P, len(b.entities))
	for i, e := range b.entities {
		out[i] = e.Properties()
	}
	return out
}

func (b *Board[P]) Entities() []*agent.Entity[P] {
	return append([]*agent.Entity[P](nil), b.entities...)
}

func (b *Board[P]) Size() int {
	return b.cfg.Size
}

func (b *Board[P]) Len() int {
	return len(b.entities)
}

// Dump lists every agent's links, outer order = population order.
func (b *Board[P]) Dump() model.PopulationDump {
	out := make(model.PopulationDump, len(b.entities))
	for i, e := range b.entities {
		out[i] = e.Dump()
	}
	return out
}

// Restore replaces the population with agents rebuilt from dump. Each agent
// gets fresh properties. The board is unchanged when any agent fails.
func (b *Board[P]) Restore(dump model.PopulationDump) error {
	entities := make([]*agent.Entity[P], 0, len(dump))
	for i, records := range dump {
		e, err := b.builder.Decode(b.cfg.NewProperties(), records)
		if err != nil {
			return fmt.Errorf("restore agent %d: %w", i, err)
		}
		entities = append(entities, e)
	}
	b.entities = entities
	b.last = Repopulation{}
	return b.checkInvariants()
}

func (b *Board[P]) Stats() Stats {
	s := Stats{Agents: len(b.entities)}
	for i, e := range b.entities {
		n := e.LinkCount()
		s.TotalLinks += n
		if i == 0 || n < s.MinLinks {
			s.MinLinks = n
		}
		if n > s.MaxLinks {
			s.MaxLinks = n
		}
	}
	if s.Agents > 0 {
		s.MeanLinks = float64(s.TotalLinks) / float64(s.Agents)
	}
	return s
}

func (b *Board[P]) checkInvariants() error {
	for i, e := range b.entities {
		if e.LinkCount() > b.cfg.MaxLinks {
			return fmt.Errorf("%w: agent %d has %d links, max %d", ErrInvariant, i, e.LinkCount(), b.cfg.MaxLinks)
		}
		if got := len(e.Neurons()); got != b.cfg.NeuronCount {
			return fmt.Errorf("%w: agent %d has %d neurons, want %d", ErrInvariant, i, got, b.cfg.NeuronCount)
		}
		for j, link := range e.Links() {
			if !nn.ValidStrength(link.Strength()) {
				return fmt.Errorf("%w: agent %d link %d strength %v", ErrInvariant, i, j, link.Strength())
			}
		}
	}
	return nil
}
