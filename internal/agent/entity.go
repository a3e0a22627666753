package agent

import (
	"errors"

	"neurowire/internal/model"
	"neurowire/internal/nn"
)

// Entity is one simulated individual: its properties, a fixed set of owned
// neurons and the link list that wires sensors to actuators.
type Entity[P any] struct {
	props   *P
	neurons []*nn.Neuron[P]
	links   []nn.Link[P]
}

// NewEntity takes ownership of neurons and binds every neuron endpoint of
// links to them.
func NewEntity[P any](props *P, neurons []*nn.Neuron[P], links []nn.Link[P]) (*Entity[P], error) {
	if props == nil {
		return nil, errors.New("entity properties are required")
	}
	bound := make([]nn.Link[P], len(links))
	for i, link := range links {
		bound[i] = link.Bind(neurons)
	}
	return &Entity[P]{props: props, neurons: neurons, links: bound}, nil
}

func (e *Entity[P]) Properties() *P {
	return e.props
}

// Links returns a copy of the link list in evaluation order.
func (e *Entity[P]) Links() []nn.Link[P] {
	return append([]nn.Link[P](nil), e.links...)
}

func (e *Entity[P]) LinkCount() int {
	return len(e.links)
}

func (e *Entity[P]) Neurons() []*nn.Neuron[P] {
	return append([]*nn.Neuron[P](nil), e.neurons...)
}

// Step runs every link in stored order and then clears all owned neurons.
// A neuron read observes writes made earlier in the same step only.
func (e *Entity[P]) Step() {
	for _, link := range e.links {
		link.Act(e.props)
	}
	for _, n := range e.neurons {
		n.Clear()
	}
}

// Dump serializes the links in evaluation order.
func (e *Entity[P]) Dump() []model.LinkRecord {
	records := make([]model.LinkRecord, len(e.links))
	for i, link := range e.links {
		key := link.Key()
		records[i] = model.LinkRecord{
			Sensor:       key.Sensor,
			Action:       key.Actuator,
			LinkStrength: link.Strength(),
		}
	}
	return records
}
