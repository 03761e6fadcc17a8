package stagesizer

import (
	"math"
)

// Wall defines the material and structural parameters of a tank wall.
type Wall struct {
	SafetyFactor     float64
	OpPressure       float64 // MPa
	UltimateStrength float64 // MPa
	Density          float64 // kg/m^3
	MassFactor       float64
}

// TankSize is the outcome of sizing one tank.
type TankSize struct {
	Radius       float64 // m, inner radius
	Thickness    float64 // m, barrel wall (or full shell for spheres)
	CapThickness float64 // m, hemispherical end caps (equal to Thickness for spheres)
	Mass         float64 // kg, including the mass factor
}

// TankModel defines a TankModel interface.
type TankModel interface {
	// Shape returns the geometry this model sizes.
	Shape() TankShape
	// Size returns the dimensions and mass of a tank holding the given volume (m^3).
	Size(volume float64, wall Wall) (TankSize, error)
}

/* Available tank models */

// SphericalTank is a thin walled spherical pressure vessel.
type SphericalTank struct{}

// Shape implements the TankModel interface.
func (t SphericalTank) Shape() TankShape {
	return Spherical
}

// Size implements the TankModel interface.
func (t SphericalTank) Size(volume float64, wall Wall) (TankSize, error) {
	if err := checkVolume("spherical tank", volume); err != nil {
		return TankSize{}, err
	}
	if volume == 0 {
		return TankSize{}, nil
	}
	r := math.Cbrt(volume / sphereFactor)
	// Thin shell: σ = P r / (2 t)
	th := wall.SafetyFactor * wall.OpPressure * r / (2 * wall.UltimateStrength)
	mass := wall.MassFactor * wall.Density * sphereFactor * shellCube(r, th)
	return checkSize("spherical tank", TankSize{Radius: r, Thickness: th, CapThickness: th, Mass: mass})
}

// CylindricalTank is a cylindrical barrel of length AspectRatio*radius closed by two hemispheres.
type CylindricalTank struct {
	AspectRatio float64
}

// Shape implements the TankModel interface.
func (t CylindricalTank) Shape() TankShape {
	return Cylindrical
}

// Size implements the TankModel interface.
func (t CylindricalTank) Size(volume float64, wall Wall) (TankSize, error) {
	if err := checkVolume("cylindrical tank", volume); err != nil {
		return TankSize{}, err
	}
	if volume == 0 {
		return TankSize{}, nil
	}
	r := math.Cbrt(volume / (math.Pi * (t.AspectRatio + 4.0/3)))
	// Hoop stress sets the barrel, the caps need half of it.
	th := 2 * wall.SafetyFactor * wall.OpPressure * r / wall.UltimateStrength
	caps := th / 2
	shell := 4.0/3*shellCube(r, caps) + t.AspectRatio*r*(2*r*th+th*th)
	mass := wall.MassFactor * wall.Density * math.Pi * shell
	return checkSize("cylindrical tank", TankSize{Radius: r, Thickness: th, CapThickness: caps, Mass: mass})
}

func checkVolume(op string, volume float64) error {
	if !nonNegative(volume) {
		return &DomainError{Op: op + " volume", Value: volume}
	}
	return nil
}

func checkSize(op string, s TankSize) (TankSize, error) {
	if !finite(s.Mass) || s.Mass < 0 {
		return TankSize{}, &DomainError{Op: op + " mass", Value: s.Mass}
	}
	return s, nil
}
