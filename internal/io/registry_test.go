package io

import (
	"errors"
	"math"
	"testing"
)

type testProps struct {
	value float64
	got   float64
}

func readValue(p *testProps) float64 { return p.value }

func record(input float64, p *testProps) { p.got = input }

func TestNewCatalogueKeepsRegistrationOrder(t *testing.T) {
	c, err := NewCatalogue(
		[]Sensor[testProps]{NewSensor("b", readValue), NewSensor("a", readValue)},
		[]Actuator[testProps]{NewActuator("y", record), NewActuator("x", record)},
	)
	if err != nil {
		t.Fatalf("new catalogue: %v", err)
	}
	sensors := c.Sensors()
	if len(sensors) != 2 || sensors[0].Name() != "b" || sensors[1].Name() != "a" {
		t.Fatalf("unexpected sensor order: %+v", sensors)
	}
	actuators := c.Actuators()
	if len(actuators) != 2 || actuators[0].Name() != "y" {
		t.Fatalf("unexpected actuator order: %+v", actuators)
	}
	if names := c.ListSensors(); names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected sorted sensor names, got %v", names)
	}
	if names := c.ListActuators(); names[0] != "x" || names[1] != "y" {
		t.Fatalf("expected sorted actuator names, got %v", names)
	}
}

func TestCatalogueValidationAndDuplicates(t *testing.T) {
	if _, err := NewCatalogue([]Sensor[testProps]{NewSensor("", readValue)}, nil); err == nil {
		t.Fatal("expected sensor name validation")
	}
	if _, err := NewCatalogue(nil, []Actuator[testProps]{NewActuator(" ", record)}); err == nil {
		t.Fatal("expected actuator name validation")
	}
	_, err := NewCatalogue([]Sensor[testProps]{NewSensor("dup", readValue), NewSensor("dup", readValue)}, nil)
	if !errors.Is(err, ErrSensorExists) {
		t.Fatalf("expected ErrSensorExists, got: %v", err)
	}
	_, err = NewCatalogue(nil, []Actuator[testProps]{NewActuator("dup", record), NewActuator("dup", record)})
	if !errors.Is(err, ErrActuatorExists) {
		t.Fatalf("expected ErrActuatorExists, got: %v", err)
	}
	if _, err := NewCatalogue([]Sensor[testProps]{nil}, nil); err == nil {
		t.Fatal("expected nil sensor rejection")
	}
}

func TestCatalogueResolve(t *testing.T) {
	c := MustCatalogue(
		[]Sensor[testProps]{NewSensor("s", readValue)},
		[]Actuator[testProps]{NewActuator("a", record)},
	)
	if _, err := c.ResolveSensor("s"); err != nil {
		t.Fatalf("resolve sensor: %v", err)
	}
	if _, err := c.ResolveActuator("a"); err != nil {
		t.Fatalf("resolve actuator: %v", err)
	}
	if _, err := c.ResolveSensor("missing"); !errors.Is(err, ErrSensorNotFound) {
		t.Fatalf("expected ErrSensorNotFound, got: %v", err)
	}
	if _, err := c.ResolveActuator("missing"); !errors.Is(err, ErrActuatorNotFound) {
		t.Fatalf("expected ErrActuatorNotFound, got: %v", err)
	}
	if !c.HasName("s") || !c.HasName("a") || c.HasName("N0") {
		t.Fatal("unexpected HasName result")
	}
}

func TestSquashingActuatorAppliesTanh(t *testing.T) {
	a := NewActuator("rec", record)
	props := &testProps{}
	a.Write(1.5, props)
	if math.Abs(props.got-math.Tanh(1.5)) > 1e-12 {
		t.Fatalf("expected squashed input, got %f", props.got)
	}
}

func TestSensorFuncReadsProps(t *testing.T) {
	s := NewSensor("v", readValue)
	if got := s.Read(&testProps{value: 0.25}); got != 0.25 {
		t.Fatalf("unexpected read: %f", got)
	}
}
