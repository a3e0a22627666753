package io

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSensorExists     = errors.New("sensor already registered")
	ErrSensorNotFound   = errors.New("sensor not found")
	ErrActuatorExists   = errors.New("actuator already registered")
	ErrActuatorNotFound = errors.New("actuator not found")
)

// Catalogue is the immutable set of sensors and actuators shared by every
// agent of a population. Registration order is preserved because genesis
// draws endpoints by position.
type Catalogue[P any] struct {
	sensors   []Sensor[P]
	actuators []Actuator[P]

	sensorByName   map[string]Sensor[P]
	actuatorByName map[string]Actuator[P]
}

func NewCatalogue[P any](sensors []Sensor[P], actuators []Actuator[P]) (*Catalogue[P], error) {
	c := &Catalogue[P]{
		sensors:        make([]Sensor[P], 0, len(sensors)),
		actuators:      make([]Actuator[P], 0, len(actuators)),
		sensorByName:   make(map[string]Sensor[P], len(sensors)),
		actuatorByName: make(map[string]Actuator[P], len(actuators)),
	}
	for i, s := range sensors {
		if s == nil {
			return nil, fmt.Errorf("sensor is required at index %d", i)
		}
		name := s.Name()
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("sensor name is required")
		}
		if _, exists := c.sensorByName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrSensorExists, name)
		}
		c.sensorByName[name] = s
		c.sensors = append(c.sensors, s)
	}
	for i, a := range actuators {
		if a == nil {
			return nil, fmt.Errorf("actuator is required at index %d", i)
		}
		name := a.Name()
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("actuator name is required")
		}
		if _, exists := c.actuatorByName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrActuatorExists, name)
		}
		c.actuatorByName[name] = a
		c.actuators = append(c.actuators, a)
	}
	return c, nil
}

// MustCatalogue is NewCatalogue for package-level catalogues built from
// literals.
func MustCatalogue[P any](sensors []Sensor[P], actuators []Actuator[P]) *Catalogue[P] {
	c, err := NewCatalogue(sensors, actuators)
	if err != nil {
		panic(err)
	}
	return c
}

// Sensors returns the sensors in registration order.
func (c *Catalogue[P]) Sensors() []Sensor[P] {
	return append([]Sensor[P](nil), c.sensors...)
}

// Actuators returns the actuators in registration order.
func (c *Catalogue[P]) Actuators() []Actuator[P] {
	return append([]Actuator[P](nil), c.actuators...)
}

func (c *Catalogue[P]) ResolveSensor(name string) (Sensor[P], error) {
	s, ok := c.sensorByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, name)
	}
	return s, nil
}

func (c *Catalogue[P]) ResolveActuator(name string) (Actuator[P], error) {
	a, ok := c.actuatorByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActuatorNotFound, name)
	}
	return a, nil
}

// HasName reports whether any sensor or actuator uses name.
func (c *Catalogue[P]) HasName(name string) bool {
	_, s := c.sensorByName[name]
	_, a := c.actuatorByName[name]
	return s || a
}

func (c *Catalogue[P]) ListSensors() []string {
	names := make([]string, 0, len(c.sensorByName))
	for n := range c.sensorByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Catalogue[P]) ListActuators() []string {
	names := make([]string, 0, len(c.actuatorByName))
	for n := range c.actuatorByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
