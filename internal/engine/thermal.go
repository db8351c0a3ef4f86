package engine

import (
	"fmt"
	"math"
)

const (
	// KelvinOffset converts Celsius to Kelvin.
	KelvinOffset = 273.15
	// InverseBoltzmann is 1/k in kelvin per electron-volt.
	InverseBoltzmann = 11605.0
)

// PiT is the dual-Arrhenius temperature acceleration factor of a part qualified at
// theta1 and operated at theta2, both relative to thetaRef. All temperatures are Celsius.
// PiT(c, r, t, t) is exactly 1 and the factor rises with theta2 when both activation
// energies are positive.
func PiT(c ArrheniusConstants, thetaRef, theta1, theta2 float64) (float64, error) {
	for _, t := range [...]float64{thetaRef, theta1, theta2} {
		if err := checkTemperature(t); err != nil {
			return 0, err
		}
	}
	tRef := thetaRef + KelvinOffset
	t1 := theta1 + KelvinOffset
	t2 := theta2 + KelvinOffset

	z := InverseBoltzmann * (1/tRef - 1/t2)
	zRef := InverseBoltzmann * (1/tRef - 1/t1)

	num := c.A*math.Exp(c.Ea1*z) + (1-c.A)*math.Exp(c.Ea2*z)
	den := c.A*math.Exp(c.Ea1*zRef) + (1-c.A)*math.Exp(c.Ea2*zRef)
	return num / den, nil
}

func checkTemperature(celsius float64) error {
	if !finite(celsius) || celsius <= -KelvinOffset {
		return fmt.Errorf("%w: %v°C", ErrInvalidTemperature, celsius)
	}
	return nil
}
