package nn

import "math"

// Squash is the activation applied on every neuron read and every catalogue
// actuator write.
func Squash(x float64) float64 {
	return math.Tanh(x)
}
