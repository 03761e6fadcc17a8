package stagesizer

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// StandardGravity is the g0 used in the rocket equation, in m/s^2.
	StandardGravity = 9.8
	sphereFactor    = 4 * math.Pi / 3
)

// PropellantFraction returns the propellant to final mass ratio, exp(Δv/(Isp*g0)) - 1, from the rocket equation.
func PropellantFraction(deltaV, isp float64) float64 {
	return math.Expm1(deltaV / (isp * StandardGravity))
}

// shellCube returns (r+t)^3 - r^3 without cancellation for thin shells.
func shellCube(r, t float64) float64 {
	return t * (3*r*r + 3*r*t + t*t)
}

// settled returns whether two successive guesses are within the tolerance.
func settled(guess, previous, tolerance float64) bool {
	return scalar.EqualWithinAbs(guess, previous, tolerance)
}

// splitPropellant splits the total propellant mass by the oxidizer to fuel mass ratio.
func splitPropellant(propellant, oxFuelRatio float64) (fuel, oxidizer float64) {
	fuel = propellant / (oxFuelRatio + 1)
	return fuel, propellant - fuel
}
