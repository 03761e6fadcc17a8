package stagesizer

import (
	"fmt"
	"sort"
	"strings"
)

// Thruster defines a chemical thruster and the propellants it burns.
type Thruster struct {
	Name        string  `json:"name"`
	Thrust      float64 `json:"thrust"` // N, vacuum
	Mass        float64 `json:"mass"`   // kg
	Isp         float64 `json:"isp"`    // s, vacuum
	OxFuelRatio float64 `json:"ox_fuel_ratio"`
	Fuel        string  `json:"fuel,omitempty"`     // propellant catalog name
	Oxidizer    string  `json:"oxidizer,omitempty"` // empty for monopropellant thrusters
}

// PropellantType returns whether this thruster burns one or two propellants.
func (t Thruster) PropellantType() PropellantType {
	if t.Oxidizer == "" && t.OxFuelRatio == 0 {
		return Monopropellant
	}
	return Bipropellant
}

func (t Thruster) String() string {
	return fmt.Sprintf("%s (%s, Isp=%.0f s, %.2f kg)", t.Name, t.PropellantType(), t.Isp, t.Mass)
}

// NewGenericThruster returns a thruster which is only defined by its mass, Isp and mixture ratio.
func NewGenericThruster(mass, isp, oxFuelRatio float64) Thruster {
	return Thruster{Name: "generic", Mass: mass, Isp: isp, OxFuelRatio: oxFuelRatio}
}

/* Available thrusters */

// ReferenceEngine is the 340 s bipropellant engine of the reference upper stage.
var ReferenceEngine = Thruster{Name: "reference", Mass: 54, Isp: 340, OxFuelRatio: 1.41}

// R4D is the Aerojet R-4D-11 apogee engine.
var R4D = Thruster{Name: "R-4D-11", Thrust: 490, Mass: 3.76, Isp: 312, OxFuelRatio: 1.65, Fuel: "mmh", Oxidizer: "nto"}

// AJ10 is the Aerojet AJ10-190 orbital maneuvering engine.
var AJ10 = Thruster{Name: "AJ10-190", Thrust: 26700, Mass: 118, Isp: 316, OxFuelRatio: 1.65, Fuel: "mmh", Oxidizer: "nto"}

// LEROS1b is the Nammo LEROS 1b apogee engine.
var LEROS1b = Thruster{Name: "LEROS-1b", Thrust: 635, Mass: 4.5, Isp: 318, OxFuelRatio: 0.85, Fuel: "hydrazine", Oxidizer: "mon-3"}

// MR104 is the Aerojet MR-104 hydrazine monopropellant thruster.
var MR104 = Thruster{Name: "MR-104", Thrust: 440, Mass: 1.86, Isp: 223, Fuel: "hydrazine"}

// RL10 is the Aerojet Rocketdyne RL10A-4-2 cryogenic upper stage engine.
var RL10 = Thruster{Name: "RL10A-4-2", Thrust: 99100, Mass: 168, Isp: 451, OxFuelRatio: 5.5, Fuel: "lh2", Oxidizer: "lox"}

var thrusters = map[string]Thruster{
	"reference": ReferenceEngine,
	"r-4d":      R4D,
	"r-4d-11":   R4D,
	"aj10":      AJ10,
	"aj10-190":  AJ10,
	"leros-1b":  LEROS1b,
	"leros1b":   LEROS1b,
	"mr-104":    MR104,
	"mr104":     MR104,
	"rl10":      RL10,
	"rl10a-4-2": RL10,
}

// ThrusterFromString returns the thruster from its name (case insensitive).
func ThrusterFromString(name string) (Thruster, error) {
	if t, found := thrusters[strings.ToLower(strings.TrimSpace(name))]; found {
		return t, nil
	}
	return Thruster{}, fmt.Errorf("undefined thruster '%s'", name)
}

// Thrusters returns every thruster of the catalog, sorted by name.
func Thrusters() []Thruster {
	seen := map[string]bool{}
	list := []Thruster{}
	for _, t := range thrusters {
		if !seen[t.Name] {
			seen[t.Name] = true
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// ApplyThruster sets the thruster mass, Isp and mixture ratio, and the propellant densities
// if the thruster names its propellants.
func (in *Inputs) ApplyThruster(t Thruster) error {
	in.ThrusterMass = t.Mass
	in.Isp = t.Isp
	if t.Fuel != "" {
		fuel, err := PropellantFromString(t.Fuel)
		if err != nil {
			return err
		}
		in.FuelDensity = fuel.Density
	}
	if t.PropellantType() == Monopropellant {
		in.SetMonopropellant()
		return nil
	}
	in.OxFuelRatio = t.OxFuelRatio
	if t.Oxidizer != "" {
		ox, err := PropellantFromString(t.Oxidizer)
		if err != nil {
			return err
		}
		in.OxDensity = ox.Density
	}
	return nil
}
