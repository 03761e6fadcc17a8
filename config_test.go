package stagesizer

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadScenarioReference(t *testing.T) {
	s, err := LoadScenario("./scenarios/reference.toml")
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if s.Inputs != referenceInputs() {
		t.Fatalf("incorrect inputs\n%+v\n%+v", s.Inputs, referenceInputs())
	}
	if s.Name != "reference" || s.MaxIterations != 1000 || s.Tolerance != 0.01 || !s.Verbose {
		t.Fatalf("incorrect general section %+v", s)
	}
	exp := ExportConfig{Filename: "reference", OutputDir: "./output", AsCSV: true, AsPDF: true, AsXLSX: true}
	if s.Export != exp {
		t.Fatalf("incorrect export %+v", s.Export)
	}
	if s.Sweep == nil || *s.Sweep != (SweepConfig{Parameter: SweepDeltaV, From: 500, To: 3000, Points: 26}) {
		t.Fatalf("incorrect sweep %+v", s.Sweep)
	}
	r, err := s.Engine(nil, false).Calculate(s.Inputs)
	if err != nil || r.Iterations != 5 {
		t.Fatalf("scenario did not reproduce the reference: %v", err)
	}
}

func TestLoadScenarioMonopropellant(t *testing.T) {
	s, err := LoadScenario("./scenarios/monoprop.toml")
	if err != nil {
		t.Fatalf("err %s", err)
	}
	exp := monopropInputs()
	exp.FuelTankShape = Cylindrical
	if s.Inputs != exp {
		t.Fatalf("incorrect inputs\n%+v\n%+v", s.Inputs, exp)
	}
	if s.Sweep != nil || s.Export.AsPDF || !s.Export.AsCSV {
		t.Fatalf("unexpected export or sweep %+v %+v", s.Export, s.Sweep)
	}
	if s.MaxIterations != DefaultMaxIterations || s.Tolerance != DefaultTolerance {
		t.Fatal("defaults not applied")
	}
}

func TestReadScenarioCatalog(t *testing.T) {
	s, err := ReadScenario(strings.NewReader(`
[propulsion]
thruster = "R-4D"
delta_v = 500
payload_mass = 800
[tanks]
material = "Al 2219-T87"
op_pressure = 2
`), "toml")
	if err != nil {
		t.Fatalf("err %s", err)
	}
	in := s.Inputs
	if in.ThrusterMass != 3.76 || in.Isp != 312 || in.OxFuelRatio != 1.65 || in.FuelDensity != 874 || in.OxDensity != 1443 {
		t.Fatalf("thruster catalog not applied: %+v", in)
	}
	if in.WallDensity != 2840 || in.WallSUlt != 455 {
		t.Fatalf("material catalog not applied: %+v", in)
	}
	if in.ContingencyFactor != 1 || in.MassFactor != 1 || in.SafetyFactor != 1 || in.FuelTankShape != Spherical {
		t.Fatalf("defaults not applied: %+v", in)
	}
	if _, err := Calculate(in); err != nil {
		t.Fatalf("err %s", err)
	}
}

func TestReadScenarioErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"thruster":     "[propulsion]\nthruster = \"raptor\"",
		"fuel":         "[tanks]\nfuel = \"unobtainium\"",
		"oxidizer":     "[tanks]\noxidizer = \"unobtainium\"",
		"material":     "[tanks]\nmaterial = \"balsa\"",
		"shape":        "[tanks]\nfuel_shape = \"toroidal\"",
		"type":         "[propulsion]\ntype = \"solid\"",
		"sweep":        "[sweep]\nparameter = \"thrust\"",
		"syntax":       "[propulsion\nisp = ",
		"bipropellant": "[propulsion]\ntype = \"bipropellant\"\nox_fuel_ratio = 0",
	} {
		if _, err := ReadScenario(strings.NewReader(doc), "toml"); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	_, err := ReadScenario(strings.NewReader("[propulsion]\ntype = \"bipropellant\""), "toml")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "ox_fuel_ratio" {
		t.Fatalf("expected a validation error on ox_fuel_ratio, got %v", err)
	}
	if _, err := LoadScenario("./scenarios/missing.toml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
