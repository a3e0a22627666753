package io

import "math"

// SensorFunc adapts a plain read function into a Sensor.
type SensorFunc[P any] struct {
	name string
	read func(props *P) float64
}

func NewSensor[P any](name string, read func(props *P) float64) SensorFunc[P] {
	return SensorFunc[P]{name: name, read: read}
}

func (s SensorFunc[P]) Name() string {
	return s.name
}

func (s SensorFunc[P]) Read(props *P) float64 {
	return s.read(props)
}

// SquashingActuator is the canonical actuator: the raw input is squashed
// through tanh before the domain mutation sees it.
type SquashingActuator[P any] struct {
	name string
	act  func(input float64, props *P)
}

func NewActuator[P any](name string, act func(input float64, props *P)) SquashingActuator[P] {
	return SquashingActuator[P]{name: name, act: act}
}

func (a SquashingActuator[P]) Name() string {
	return a.name
}

func (a SquashingActuator[P]) Write(input float64, props *P) {
	a.act(math.Tanh(input), props)
}
