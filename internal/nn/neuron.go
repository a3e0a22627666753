package nn

import (
	"strconv"
	"strings"

	neuroio "neurowire/internal/io"
)

const neuronPrefix = "N"

var (
	_ neuroio.Sensor[struct{}]   = (*Neuron[struct{}])(nil)
	_ neuroio.Actuator[struct{}] = (*Neuron[struct{}])(nil)
)

// Neuron is the per-agent signal primitive. It is both a sensor and an
// actuator: writes accumulate raw input, reads squash the accumulator.
type Neuron[P any] struct {
	index int
	name  string
	input float64
}

func NewNeuron[P any](index int) *Neuron[P] {
	return &Neuron[P]{index: index, name: NeuronName(index)}
}

// NewNeurons allocates a fresh neuron array indexed 0..count-1.
func NewNeurons[P any](count int) []*Neuron[P] {
	neurons := make([]*Neuron[P], count)
	for i := range neurons {
		neurons[i] = NewNeuron[P](i)
	}
	return neurons
}

// NeuronName is the wiring name of the neuron at index.
func NeuronName(index int) string {
	return neuronPrefix + strconv.Itoa(index)
}

// ParseNeuronName returns the index encoded in a neuron name.
func ParseNeuronName(name string) (int, bool) {
	if !strings.HasPrefix(name, neuronPrefix) {
		return 0, false
	}
	digits := name[len(neuronPrefix):]
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return 0, false
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

func (n *Neuron[P]) Name() string {
	return n.name
}

func (n *Neuron[P]) Index() int {
	return n.index
}

// Read squashes everything written since the last Clear.
func (n *Neuron[P]) Read(_ *P) float64 {
	return Squash(n.input)
}

// Write adds input to the accumulator without squashing it.
func (n *Neuron[P]) Write(input float64, _ *P) {
	n.input += input
}

func (n *Neuron[P]) Clear() {
	n.input = 0
}

// Input is the raw accumulator.
func (n *Neuron[P]) Input() float64 {
	return n.input
}
