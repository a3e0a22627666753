package genotype

import (
	"errors"
	"fmt"

	"neurowire/internal/agent"
	neuroio "neurowire/internal/io"
	"neurowire/internal/nn"
	"neurowire/internal/rng"
)

var ErrInvalidConfig = errors.New("invalid wiring config")

// Config fixes the wiring shape shared by every agent of a run.
type Config[P any] struct {
	Catalogue    *neuroio.Catalogue[P]
	NeuronCount  int
	MaxLinks     int
	MutationRate float64
	Random       rng.Source
}

func (c Config[P]) Validate() error {
	if c.Catalogue == nil {
		return fmt.Errorf("%w: catalogue is required", ErrInvalidConfig)
	}
	if c.Random == nil {
		return fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	if c.NeuronCount <= 0 {
		return fmt.Errorf("%w: neuron count must be > 0, got %d", ErrInvalidConfig, c.NeuronCount)
	}
	if c.MaxLinks < 0 {
		return fmt.Errorf("%w: max links must be >= 0, got %d", ErrInvalidConfig, c.MaxLinks)
	}
	if !(c.MutationRate >= 0 && c.MutationRate <= 1) {
		return fmt.Errorf("%w: mutation rate must be in [0, 1], got %v", ErrInvalidConfig, c.MutationRate)
	}
	for i := 0; i < c.NeuronCount; i++ {
		name := nn.NeuronName(i)
		if _, err := c.Catalogue.ResolveSensor(name); err == nil {
			return fmt.Errorf("%w: %w: %s is reserved for neurons", ErrInvalidConfig, neuroio.ErrSensorExists, name)
		}
		if _, err := c.Catalogue.ResolveActuator(name); err == nil {
			return fmt.Errorf("%w: %w: %s is reserved for neurons", ErrInvalidConfig, neuroio.ErrActuatorExists, name)
		}
	}
	return nil
}

// Builder constructs agents at genesis, by crossover and from dumps.
type Builder[P any] struct {
	cfg Config[P]
}

func NewBuilder[P any](cfg Config[P]) (*Builder[P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder[P]{cfg: cfg}, nil
}

func (b *Builder[P]) Config() Config[P] {
	return b.cfg
}

// endpoints lists the agent's own neurons first, then the catalogue in
// registration order.
func (b *Builder[P]) endpoints(neurons []*nn.Neuron[P]) ([]neuroio.Sensor[P], []neuroio.Actuator[P]) {
	catalogueSensors := b.cfg.Catalogue.Sensors()
	catalogueActuators := b.cfg.Catalogue.Actuators()
	sensors := make([]neuroio.Sensor[P], 0, len(neurons)+len(catalogueSensors))
	actuators := make([]neuroio.Actuator[P], 0, len(neurons)+len(catalogueActuators))
	for _, n := range neurons {
		sensors = append(sensors, n)
		actuators = append(actuators, n)
	}
	sensors = append(sensors, catalogueSensors...)
	actuators = append(actuators, catalogueActuators...)
	return sensors, actuators
}

// Random builds a genesis agent with between 0 and MaxLinks/2 random links.
func (b *Builder[P]) Random(props *P) (*agent.Entity[P], error) {
	neurons := nn.NewNeurons[P](b.cfg.NeuronCount)
	sensors, actuators := b.endpoints(neurons)

	count := rng.IntInclusive(b.cfg.Random, 0, b.cfg.MaxLinks/2)
	links := make([]nn.Link[P], count)
	for i := range links {
		links[i] = nn.RandomLink(b.cfg.Random, sensors, actuators)
	}
	return agent.NewEntity(props, neurons, links)
}
