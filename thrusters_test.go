package stagesizer

import (
	"testing"
)

func TestThrusterFromString(t *testing.T) {
	for name, exp := range map[string]Thruster{"R-4D": R4D, "r-4d-11": R4D, "AJ10-190": AJ10, " leros-1b": LEROS1b, "MR-104": MR104, "rl10": RL10, "Reference": ReferenceEngine} {
		got, err := ThrusterFromString(name)
		if err != nil {
			t.Fatalf("%s: err %s", name, err)
		}
		if got != exp {
			t.Fatalf("%s: got %s", name, got)
		}
	}
	if _, err := ThrusterFromString("raptor"); err == nil {
		t.Fatal("expected an error for an unknown thruster")
	}
}

func TestThrustersCatalog(t *testing.T) {
	list := Thrusters()
	if len(list) != 6 {
		t.Fatalf("expected 6 distinct thrusters, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Fatal("catalog is not sorted")
		}
	}
	for _, th := range list {
		if th.Mass <= 0 || th.Isp <= 0 {
			t.Fatalf("%s: invalid definition", th)
		}
		if th.Fuel != "" {
			if _, err := PropellantFromString(th.Fuel); err != nil {
				t.Fatalf("%s: %s", th.Name, err)
			}
		}
		if th.Oxidizer != "" {
			if _, err := PropellantFromString(th.Oxidizer); err != nil {
				t.Fatalf("%s: %s", th.Name, err)
			}
		}
	}
}

func TestApplyThruster(t *testing.T) {
	in := referenceInputs()
	if err := in.ApplyThruster(R4D); err != nil {
		t.Fatalf("err %s", err)
	}
	if in.ThrusterMass != 3.76 || in.Isp != 312 || in.OxFuelRatio != 1.65 || in.FuelDensity != 874 || in.OxDensity != 1443 {
		t.Fatalf("R-4D not applied: %+v", in)
	}
	if _, err := Calculate(in); err != nil {
		t.Fatalf("err %s", err)
	}

	in = referenceInputs()
	if err := in.ApplyThruster(MR104); err != nil {
		t.Fatalf("err %s", err)
	}
	if in.PropellantType() != Monopropellant || in.OxDensity != 1 || in.FuelDensity != 1008.3 {
		t.Fatalf("MR-104 not applied: %+v", in)
	}
	r, err := Calculate(in)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if r.OxidizerMass != 0 {
		t.Fatal("monopropellant thruster burns oxidizer")
	}

	// Generic thrusters keep the densities.
	in = referenceInputs()
	if err := in.ApplyThruster(NewGenericThruster(20, 300, 2)); err != nil {
		t.Fatalf("err %s", err)
	}
	if in.ThrusterMass != 20 || in.Isp != 300 || in.OxFuelRatio != 2 || in.FuelDensity != 1008.3 || in.OxDensity != 2720 {
		t.Fatalf("generic thruster not applied: %+v", in)
	}
	if err := in.ApplyThruster(Thruster{Name: "bad", Mass: 1, Isp: 1, Fuel: "unobtainium"}); err == nil {
		t.Fatal("expected an error for an unknown propellant")
	}
}
