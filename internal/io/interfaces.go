package io

// Sensor is a named, pure read of an agent's properties. Implementations
// report values in [0, 1] and never mutate props.
type Sensor[P any] interface {
	Name() string
	Read(props *P) float64
}

// Actuator is a named sink that turns a raw link input into a mutation of an
// agent's properties.
type Actuator[P any] interface {
	Name() string
	Write(input float64, props *P)
}
