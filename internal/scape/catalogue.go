package scape

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	neuroio "neurowire/internal/io"
)

const (
	SensorIsUp           = "IU"
	SensorTouchingBorder = "TB"
	SensorNoise          = "RN"
	SensorTime           = "TP"
	SensorAlways         = "AL"

	ActuatorTurnLeft     = "LT"
	ActuatorTurnRight    = "RT"
	ActuatorMoveForward  = "FD"
	ActuatorMoveBackward = "BW"
)

// noiseScale spreads the noise field so neighbouring cells and turns differ.
const noiseScale = 0.15

// NewCatalogue returns the grid sensors and actuators. RN samples noise over
// position and elapsed turns, so it is reproducible for a seed.
func NewCatalogue(noise opensimplex.Noise) *neuroio.Catalogue[Creature] {
	return neuroio.MustCatalogue(
		[]neuroio.Sensor[Creature]{
			neuroio.NewSensor(SensorIsUp, func(c *Creature) float64 {
				return boolSignal(c.Direction == Up)
			}),
			neuroio.NewSensor(SensorTouchingBorder, func(c *Creature) float64 {
				return boolSignal(c.TouchingBorder())
			}),
			neuroio.NewSensor(SensorNoise, func(c *Creature) float64 {
				elapsed := c.Clock.Generation*(c.Clock.MaxTurn+1) + c.Clock.Turn
				return noise.Eval3(float64(c.X)*noiseScale, float64(c.Y)*noiseScale, float64(elapsed)*noiseScale)
			}),
			neuroio.NewSensor(SensorTime, func(c *Creature) float64 {
				return float64(c.Clock.Turn) / float64(c.Clock.MaxTurn)
			}),
			neuroio.NewSensor(SensorAlways, func(*Creature) float64 { return 1 }),
		},
		[]neuroio.Actuator[Creature]{
			neuroio.NewActuator(ActuatorTurnLeft, func(in float64, c *Creature) {
				if in > 0 {
					c.Direction = c.Direction.TurnLeft()
				}
			}),
			neuroio.NewActuator(ActuatorTurnRight, func(in float64, c *Creature) {
				if in > 0 {
					c.Direction = c.Direction.TurnRight()
				}
			}),
			neuroio.NewActuator(ActuatorMoveForward, func(in float64, c *Creature) {
				if in > 0 {
					c.move(2)
				}
			}),
			neuroio.NewActuator(ActuatorMoveBackward, func(in float64, c *Creature) {
				if in > 0 {
					c.move(-1)
				}
			}),
		},
	)
}

func boolSignal(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
