package stagesizer

import (
	"fmt"
	"strings"
)

// Iteration stores one pass of the dry mass iteration.
type Iteration struct {
	Number           int     `json:"number"`
	DryMassGuess     float64 `json:"dry_mass_guess"` // guess produced by this pass
	PropellantMass   float64 `json:"propellant_mass"`
	FuelMass         float64 `json:"fuel_mass"`
	OxidizerMass     float64 `json:"oxidizer_mass"`
	FuelTankMass     float64 `json:"fuel_tank_mass"`
	OxidizerTankMass float64 `json:"oxidizer_tank_mass"`
	Residual         float64 `json:"residual"`
}

// Result stores a converged stage sizing. Masses are in kg, volumes in m^3 and lengths in m.
type Result struct {
	Iterations            int         `json:"iterations"`
	Residual              float64     `json:"residual"` // dry mass change of the last pass
	FuelMass              float64     `json:"fuel_mass"`
	OxidizerMass          float64     `json:"oxidizer_mass"`
	FuelVolume            float64     `json:"fuel_volume"`
	OxidizerVolume        float64     `json:"oxidizer_volume"`
	FuelTankMass          float64     `json:"fuel_tank_mass"`
	OxidizerTankMass      float64     `json:"oxidizer_tank_mass"`
	FuelTankRadius        float64     `json:"fuel_tank_radius"`
	OxidizerTankRadius    float64     `json:"oxidizer_tank_radius"`
	FuelTankThickness     float64     `json:"fuel_tank_thickness"`
	OxidizerTankThickness float64     `json:"oxidizer_tank_thickness"`
	SystemDryMass         float64     `json:"system_dry_mass"` // thruster and tanks
	SystemWetMass         float64     `json:"system_wet_mass"`
	StageDryMass          float64     `json:"stage_dry_mass"` // converged guess, includes the payload
	StageWetMass          float64     `json:"stage_wet_mass"`
	History               []Iteration `json:"history,omitempty"`
}

// PropellantMass returns the total propellant mass.
func (r Result) PropellantMass() float64 {
	return r.FuelMass + r.OxidizerMass
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Converged after %d iterations with difference of %.4f kg from previous iteration.\n", r.Iterations, r.Residual)
	fmt.Fprintf(&b, "Fuel tank radius = %.4f m\n", r.FuelTankRadius)
	fmt.Fprintf(&b, "Oxidizer tank radius = %.4f m\n", r.OxidizerTankRadius)
	fmt.Fprintf(&b, "System dry mass = %.4f kg\n", r.SystemDryMass)
	fmt.Fprintf(&b, "System wet mass = %.4f kg\n", r.SystemWetMass)
	fmt.Fprintf(&b, "Fuel mass = %.4f kg\n", r.FuelMass)
	fmt.Fprintf(&b, "Oxidizer mass = %.4f kg\n", r.OxidizerMass)
	fmt.Fprintf(&b, "Fuel tank mass = %.4f kg\n", r.FuelTankMass)
	fmt.Fprintf(&b, "Oxidizer tank mass = %.4f kg\n", r.OxidizerTankMass)
	fmt.Fprintf(&b, "Stage dry mass = %.4f kg\n", r.StageDryMass)
	fmt.Fprintf(&b, "Stage wet mass = %.4f kg\n", r.StageWetMass)
	return b.String()
}

// Report returns a human readable summary of the inputs followed by the result.
func Report(in Inputs, r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s, fuel tank %s, oxidizer tank %s ===\n", in.PropellantType(), in.FuelTankShape, in.OxTankShape)
	fmt.Fprintf(&b, "Isp = %.1f s\tΔv = %.1f m/s\tpayload = %.2f kg\tthruster = %.2f kg\n", in.Isp, in.DeltaV, in.PayloadMass, in.ThrusterMass)
	fmt.Fprintf(&b, "contingency = %.3f\tO/F = %.3f\tρ fuel = %.1f kg/m^3\tρ ox = %.1f kg/m^3\n", in.ContingencyFactor, in.OxFuelRatio, in.FuelDensity, in.OxDensity)
	fmt.Fprintf(&b, "P = %.3f MPa\tSF = %.2f\tmass factor = %.2f\twall ρ = %.1f kg/m^3\ts_ult = %.1f MPa", in.OpPressure, in.SafetyFactor, in.MassFactor, in.WallDensity, in.WallSUlt)
	if in.hasCylinder() {
		fmt.Fprintf(&b, "\taspect ratio = %.2f", in.AspectRatio)
	}
	b.WriteString("\n")
	b.WriteString(r.String())
	return b.String()
}
