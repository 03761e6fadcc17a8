package stagesizer

import (
	"fmt"
	"io"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// SweepConfig defines a parameter sweep requested by a scenario.
type SweepConfig struct {
	Parameter SweepParameter
	From, To  float64
	Points    int
}

// Scenario is a sizing request read from a TOML file.
type Scenario struct {
	Name          string
	Inputs        Inputs
	MaxIterations int
	Tolerance     float64
	Verbose       bool
	Export        ExportConfig
	Sweep         *SweepConfig // nil if no sweep is requested
}

// Engine returns an engine configured with the scenario tolerance and iteration cap.
func (s Scenario) Engine(logger kitlog.Logger, debug bool) *Engine {
	return NewEngine(WithTolerance(s.Tolerance), WithMaxIterations(s.MaxIterations), WithLogger(logger), WithDebug(debug))
}

// LoadScenario reads a scenario file. The format is deduced from the extension (TOML is expected).
func LoadScenario(path string) (Scenario, error) {
	v := newScenarioViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %s", path, err)
	}
	return scenarioFromViper(v)
}

// ReadScenario reads a scenario in the given format (e.g. "toml") from a reader.
func ReadScenario(r io.Reader, format string) (Scenario, error) {
	v := newScenarioViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return Scenario{}, err
	}
	return scenarioFromViper(v)
}

func newScenarioViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("general.name", "stage")
	v.SetDefault("general.output_path", ".")
	v.SetDefault("general.max_iterations", DefaultMaxIterations)
	v.SetDefault("general.tolerance", DefaultTolerance)
	v.SetDefault("propulsion.contingency_factor", 1.0)
	v.SetDefault("tanks.fuel_shape", "spherical")
	v.SetDefault("tanks.ox_shape", "spherical")
	v.SetDefault("tanks.mass_factor", 1.0)
	v.SetDefault("tanks.safety_factor", 1.0)
	v.SetDefault("sweep.points", 11)
	return v
}

func scenarioFromViper(v *viper.Viper) (Scenario, error) {
	s := Scenario{
		Name:          v.GetString("general.name"),
		MaxIterations: v.GetInt("general.max_iterations"),
		Tolerance:     v.GetFloat64("general.tolerance"),
		Verbose:       v.GetBool("general.verbose"),
	}
	in := &s.Inputs

	// Catalog entries first, explicit values override them.
	if name := v.GetString("propulsion.thruster"); name != "" {
		thruster, err := ThrusterFromString(name)
		if err != nil {
			return Scenario{}, fmt.Errorf("propulsion.thruster: %s", err)
		}
		if err := in.ApplyThruster(thruster); err != nil {
			return Scenario{}, fmt.Errorf("propulsion.thruster: %s", err)
		}
	}
	if name := v.GetString("tanks.fuel"); name != "" {
		fuel, err := PropellantFromString(name)
		if err != nil {
			return Scenario{}, fmt.Errorf("tanks.fuel: %s", err)
		}
		in.FuelDensity = fuel.Density
	}
	if name := v.GetString("tanks.oxidizer"); name != "" {
		ox, err := PropellantFromString(name)
		if err != nil {
			return Scenario{}, fmt.Errorf("tanks.oxidizer: %s", err)
		}
		in.OxDensity = ox.Density
	}
	if name := v.GetString("tanks.material"); name != "" {
		material, err := MaterialFromString(name)
		if err != nil {
			return Scenario{}, fmt.Errorf("tanks.material: %s", err)
		}
		in.ApplyMaterial(material)
	}

	for key, dst := range map[string]*float64{
		"propulsion.thruster_mass":      &in.ThrusterMass,
		"propulsion.isp":                &in.Isp,
		"propulsion.delta_v":            &in.DeltaV,
		"propulsion.contingency_factor": &in.ContingencyFactor,
		"propulsion.ox_fuel_ratio":      &in.OxFuelRatio,
		"propulsion.payload_mass":       &in.PayloadMass,
		"tanks.fuel_density":            &in.FuelDensity,
		"tanks.ox_density":              &in.OxDensity,
		"tanks.aspect_ratio":            &in.AspectRatio,
		"tanks.mass_factor":             &in.MassFactor,
		"tanks.wall_density":            &in.WallDensity,
		"tanks.wall_s_ult":              &in.WallSUlt,
		"tanks.safety_factor":           &in.SafetyFactor,
		"tanks.op_pressure":             &in.OpPressure,
	} {
		// Defaults only apply if no catalog entry already set the value.
		if v.InConfig(key) || *dst == 0 {
			if v.IsSet(key) {
				*dst = v.GetFloat64(key)
			}
		}
	}

	var err error
	if in.FuelTankShape, err = TankShapeFromString(v.GetString("tanks.fuel_shape")); err != nil {
		return Scenario{}, fmt.Errorf("tanks.fuel_shape: %s", err)
	}
	if in.OxTankShape, err = TankShapeFromString(v.GetString("tanks.ox_shape")); err != nil {
		return Scenario{}, fmt.Errorf("tanks.ox_shape: %s", err)
	}

	if kind := v.GetString("propulsion.type"); kind != "" {
		ptype, err := PropellantTypeFromString(kind)
		if err != nil {
			return Scenario{}, fmt.Errorf("propulsion.type: %s", err)
		}
		switch ptype {
		case Monopropellant:
			in.SetMonopropellant()
		case Bipropellant:
			if in.OxFuelRatio <= 0 {
				return Scenario{}, &ValidationError{Field: "ox_fuel_ratio", Value: in.OxFuelRatio, Reason: "must be positive for a bipropellant"}
			}
		}
	}

	s.Export = ExportConfig{
		Filename:  s.Name,
		OutputDir: v.GetString("general.output_path"),
		AsCSV:     v.GetBool("export.csv"),
		AsPDF:     v.GetBool("export.pdf"),
		AsXLSX:    v.GetBool("sweep.xlsx"),
		Timestamp: v.GetBool("export.timestamp"),
	}
	if name := v.GetString("export.filename"); name != "" {
		s.Export.Filename = name
	}

	if name := v.GetString("sweep.parameter"); name != "" {
		param, err := SweepParameterFromString(name)
		if err != nil {
			return Scenario{}, fmt.Errorf("sweep.parameter: %s", err)
		}
		s.Sweep = &SweepConfig{Parameter: param, From: v.GetFloat64("sweep.from"), To: v.GetFloat64("sweep.to"), Points: v.GetInt("sweep.points")}
	}
	return s, nil
}
