package nn

import (
	"errors"
	"fmt"
	"math"

	neuroio "neurowire/internal/io"
	"neurowire/internal/rng"
)

const (
	MinStrength = -4.0
	MaxStrength = 4.0
)

var (
	ErrStrengthOutOfRange = errors.New("link strength out of range")
	ErrMissingEndpoint    = errors.New("link endpoint is required")
)

// EdgeKey is the identity of a link for inheritance: the endpoint names,
// never the strength.
type EdgeKey struct {
	Sensor   string
	Actuator string
}

func (k EdgeKey) String() string {
	return k.Sensor + "-" + k.Actuator
}

// Link is a directed, weighted edge from a sensor to an actuator. Links are
// values; mutation always builds a new one.
type Link[P any] struct {
	sensor   neuroio.Sensor[P]
	actuator neuroio.Actuator[P]
	strength float64
}

func NewLink[P any](sensor neuroio.Sensor[P], actuator neuroio.Actuator[P], strength float64) (Link[P], error) {
	if sensor == nil || actuator == nil {
		return Link[P]{}, ErrMissingEndpoint
	}
	if !ValidStrength(strength) {
		return Link[P]{}, fmt.Errorf("%w: %v", ErrStrengthOutOfRange, strength)
	}
	return Link[P]{sensor: sensor, actuator: actuator, strength: strength}, nil
}

// RandomStrength draws a strength uniformly from [MinStrength, MaxStrength).
func RandomStrength(src rng.Source) float64 {
	return rng.Float(src, MinStrength, MaxStrength)
}

// RandomLink picks both endpoints uniformly and draws a fresh strength.
func RandomLink[P any](src rng.Source, sensors []neuroio.Sensor[P], actuators []neuroio.Actuator[P]) Link[P] {
	sensor := rng.Choice(src, sensors)
	actuator := rng.Choice(src, actuators)
	return Link[P]{sensor: sensor, actuator: actuator, strength: RandomStrength(src)}
}

// WithRandomStrength keeps the endpoints of l and redraws its strength.
func (l Link[P]) WithRandomStrength(src rng.Source) Link[P] {
	return Link[P]{sensor: l.sensor, actuator: l.actuator, strength: RandomStrength(src)}
}

func (l Link[P]) Sensor() neuroio.Sensor[P] {
	return l.sensor
}

func (l Link[P]) Actuator() neuroio.Actuator[P] {
	return l.actuator
}

func (l Link[P]) Strength() float64 {
	return l.strength
}

func (l Link[P]) Key() EdgeKey {
	return EdgeKey{Sensor: l.sensor.Name(), Actuator: l.actuator.Name()}
}

// Act reads the sensor, adds the strength and delivers the raw sum.
func (l Link[P]) Act(props *P) {
	l.actuator.Write(l.sensor.Read(props)+l.strength, props)
}

// Bind re-points neuron endpoints at the neuron with the same index in
// neurons. Catalogue endpoints are left untouched.
func (l Link[P]) Bind(neurons []*Neuron[P]) Link[P] {
	if n, ok := l.sensor.(*Neuron[P]); ok && n.index < len(neurons) {
		l.sensor = neurons[n.index]
	}
	if n, ok := l.actuator.(*Neuron[P]); ok && n.index < len(neurons) {
		l.actuator = neurons[n.index]
	}
	return l
}

// ValidStrength reports whether s lies in [MinStrength, MaxStrength].
func ValidStrength(s float64) bool {
	return !math.IsNaN(s) && s >= MinStrength && s <= MaxStrength
}
