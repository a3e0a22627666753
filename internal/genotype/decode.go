package genotype

import (
	"errors"
	"fmt"

	"neurowire/internal/agent"
	neuroio "neurowire/internal/io"
	"neurowire/internal/model"
	"neurowire/internal/nn"
)

var ErrTooManyLinks = errors.New("link count exceeds max links")

// Decode rebuilds an agent from its dumped links. Neuron names resolve to
// the new agent's own neurons, every other name to the catalogue.
func (b *Builder[P]) Decode(props *P, records []model.LinkRecord) (*agent.Entity[P], error) {
	if len(records) > b.cfg.MaxLinks {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLinks, len(records), b.cfg.MaxLinks)
	}
	neurons := nn.NewNeurons[P](b.cfg.NeuronCount)
	links := make([]nn.Link[P], 0, len(records))
	for i, record := range records {
		sensor, err := b.resolveSensor(neurons, record.Sensor)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		actuator, err := b.resolveActuator(neurons, record.Action)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		link, err := nn.NewLink(sensor, actuator, record.LinkStrength)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		links = append(links, link)
	}
	return agent.NewEntity(props, neurons, links)
}

func (b *Builder[P]) resolveSensor(neurons []*nn.Neuron[P], name string) (neuroio.Sensor[P], error) {
	if idx, ok := nn.ParseNeuronName(name); ok && idx < len(neurons) {
		return neurons[idx], nil
	}
	return b.cfg.Catalogue.ResolveSensor(name)
}

func (b *Builder[P]) resolveActuator(neurons []*nn.Neuron[P], name string) (neuroio.Actuator[P], error) {
	if idx, ok := nn.ParseNeuronName(name); ok && idx < len(neurons) {
		return neurons[idx], nil
	}
	return b.cfg.Catalogue.ResolveActuator(name)
}
