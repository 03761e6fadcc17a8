package stagesizer

import (
	"fmt"
	"math"
	"strings"
)

// TankShape defines the geometry of a propellant tank.
type TankShape uint8

const (
	// Spherical is a single spherical shell.
	Spherical TankShape = iota + 1
	// Cylindrical is a cylindrical barrel capped by two hemispheres.
	Cylindrical
)

func (s TankShape) String() string {
	switch s {
	case Spherical:
		return "spherical"
	case Cylindrical:
		return "cylindrical"
	}
	return fmt.Sprintf("TankShape(%d)", uint8(s))
}

// Model returns the tank mass model for this shape. The aspect ratio is only used by cylindrical tanks.
func (s TankShape) Model(aspectRatio float64) (TankModel, error) {
	switch s {
	case Spherical:
		return SphericalTank{}, nil
	case Cylindrical:
		return CylindricalTank{AspectRatio: aspectRatio}, nil
	}
	return nil, fmt.Errorf("unknown tank shape %d", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s TankShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TankShape) UnmarshalText(text []byte) error {
	shape, err := TankShapeFromString(string(text))
	if err != nil {
		return err
	}
	*s = shape
	return nil
}

// TankShapeFromString returns the tank shape from its name (case insensitive).
func TankShapeFromString(name string) (TankShape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spherical", "sphere":
		return Spherical, nil
	case "cylindrical", "cylinder":
		return Cylindrical, nil
	}
	return 0, fmt.Errorf("unknown tank shape `%s`", name)
}

// PropellantType distinguishes single propellant systems from fuel and oxidizer systems.
type PropellantType uint8

const (
	// Monopropellant systems only have a fuel leg.
	Monopropellant PropellantType = iota + 1
	// Bipropellant systems burn a fuel with an oxidizer.
	Bipropellant
)

func (p PropellantType) String() string {
	switch p {
	case Monopropellant:
		return "monopropellant"
	case Bipropellant:
		return "bipropellant"
	}
	return fmt.Sprintf("PropellantType(%d)", uint8(p))
}

// PropellantTypeFromString returns the propellant type from its name.
func PropellantTypeFromString(name string) (PropellantType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "monopropellant", "mono":
		return Monopropellant, nil
	case "bipropellant", "bi", "biprop":
		return Bipropellant, nil
	}
	return 0, fmt.Errorf("unknown propellant type `%s`", name)
}

// Inputs stores every parameter needed to size a propulsion stage.
// Masses are in kg, Isp in seconds, velocities in m/s, densities in kg/m^3, and
// strength and pressure in MPa.
type Inputs struct {
	ThrusterMass      float64   `json:"thruster_mass"`
	Isp               float64   `json:"isp"`
	DeltaV            float64   `json:"delta_v"`
	ContingencyFactor float64   `json:"contingency_factor"`
	OxFuelRatio       float64   `json:"ox_fuel_ratio"` // 0 for monopropellant
	PayloadMass       float64   `json:"payload_mass"`  // All mass above this stage, also the initial dry mass guess.
	FuelDensity       float64   `json:"fuel_density"`
	OxDensity         float64   `json:"ox_density"` // 1 if monopropellant
	AspectRatio       float64   `json:"aspect_ratio"`
	MassFactor        float64   `json:"mass_factor"`
	WallDensity       float64   `json:"wall_density"`
	WallSUlt          float64   `json:"wall_s_ult"`
	SafetyFactor      float64   `json:"safety_factor"`
	OpPressure        float64   `json:"op_pressure"`
	FuelTankShape     TankShape `json:"fuel_tank_shape"`
	OxTankShape       TankShape `json:"ox_tank_shape"`
}

// PropellantType returns whether these inputs describe a mono or a bipropellant system.
func (in Inputs) PropellantType() PropellantType {
	if in.OxFuelRatio == 0 {
		return Monopropellant
	}
	return Bipropellant
}

// SetMonopropellant switches to the monopropellant convention (no oxidizer, unit oxidizer density).
func (in *Inputs) SetMonopropellant() {
	in.OxFuelRatio = 0
	in.OxDensity = 1
}

// Wall returns the structural parameters shared by both tanks.
func (in Inputs) Wall() Wall {
	return Wall{
		SafetyFactor:     in.SafetyFactor,
		OpPressure:       in.OpPressure,
		UltimateStrength: in.WallSUlt,
		Density:          in.WallDensity,
		MassFactor:       in.MassFactor,
	}
}

func (in Inputs) hasCylinder() bool {
	return in.FuelTankShape == Cylindrical || in.OxTankShape == Cylindrical
}

// belowUnity returns the margin factors set under 1, which are accepted but unusual.
func (in Inputs) belowUnity() []string {
	var fields []string
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"contingency_factor", in.ContingencyFactor},
		{"mass_factor", in.MassFactor},
		{"safety_factor", in.SafetyFactor},
	} {
		if f.value < 1 {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// Validate returns a *ValidationError naming the first invalid field, or nil.
func (in Inputs) Validate() error {
	checks := []struct {
		field string
		value float64
		ok    func(float64) bool
		why   string
	}{
		{"thruster_mass", in.ThrusterMass, nonNegative, "must be zero or positive"},
		{"isp", in.Isp, positive, "must be positive"},
		{"delta_v", in.DeltaV, nonNegative, "must be zero or positive"},
		{"contingency_factor", in.ContingencyFactor, positive, "must be positive"},
		{"ox_fuel_ratio", in.OxFuelRatio, nonNegative, "must be zero (monopropellant) or positive"},
		{"payload_mass", in.PayloadMass, nonNegative, "must be zero or positive"},
		{"fuel_density", in.FuelDensity, positive, "must be positive"},
		{"ox_density", in.OxDensity, positive, "must be positive (use 1 for monopropellant)"},
		{"mass_factor", in.MassFactor, positive, "must be positive"},
		{"wall_density", in.WallDensity, positive, "must be positive"},
		{"wall_s_ult", in.WallSUlt, positive, "must be positive"},
		{"safety_factor", in.SafetyFactor, positive, "must be positive"},
		{"op_pressure", in.OpPressure, positive, "must be positive"},
	}
	for _, c := range checks {
		if !c.ok(c.value) {
			return &ValidationError{Field: c.field, Value: c.value, Reason: c.why}
		}
	}
	if in.hasCylinder() {
		if !positive(in.AspectRatio) {
			return &ValidationError{Field: "aspect_ratio", Value: in.AspectRatio, Reason: "must be positive for cylindrical tanks"}
		}
	} else if !nonNegative(in.AspectRatio) {
		return &ValidationError{Field: "aspect_ratio", Value: in.AspectRatio, Reason: "must be zero or positive"}
	}
	if _, err := in.FuelTankShape.Model(in.AspectRatio); err != nil {
		return &ValidationError{Field: "fuel_tank_shape", Value: float64(in.FuelTankShape), Reason: "must be spherical or cylindrical"}
	}
	if _, err := in.OxTankShape.Model(in.AspectRatio); err != nil {
		return &ValidationError{Field: "ox_tank_shape", Value: float64(in.OxTankShape), Reason: "must be spherical or cylindrical"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func nonNegative(v float64) bool {
	return finite(v) && v >= 0
}
