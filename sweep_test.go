package stagesizer

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestSweepDeltaV(t *testing.T) {
	e := NewEngine()
	base := referenceInputs()
	sweep, err := e.Sweep(base, SweepDeltaV, 500, 3000, 11, 4)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(sweep.Points) != 11 || sweep.Failures() != 0 {
		t.Fatalf("got %d points, %d failures", len(sweep.Points), sweep.Failures())
	}
	for i, pt := range sweep.Points {
		if !scalar.EqualWithinAbs(pt.Value, 500+250*float64(i), 1e-9) {
			t.Fatalf("point %d at %f", i, pt.Value)
		}
		if pt.Result.History != nil {
			t.Fatal("history should be dropped")
		}
		if i > 0 && pt.Result.SystemWetMass <= sweep.Points[i-1].Result.SystemWetMass {
			t.Fatal("wet mass should increase with Δv")
		}
		in := base
		in.DeltaV = pt.Value
		exp, _ := e.Calculate(in)
		if exp.StageWetMass != pt.Result.StageWetMass {
			t.Fatalf("point %d differs from a direct calculation", i)
		}
	}
	if sweep.Base != base {
		t.Fatal("base inputs were modified")
	}
}

func TestSweepKeepsFailures(t *testing.T) {
	sweep, err := NewEngine().Sweep(referenceInputs(), SweepIsp, 0, 400, 5, 0)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if sweep.Failures() != 1 {
		t.Fatalf("expected one failure, got %d", sweep.Failures())
	}
	var verr *ValidationError
	if !errors.As(sweep.Points[0].Err, &verr) || verr.Field != "isp" || sweep.Points[0].Error == "" {
		t.Fatalf("unexpected first point %+v", sweep.Points[0])
	}
	for _, pt := range sweep.Points[1:] {
		if pt.Err != nil {
			t.Fatalf("Isp=%f: err %s", pt.Value, pt.Err)
		}
	}
}

func TestSweepArguments(t *testing.T) {
	e := NewEngine()
	if _, err := e.Sweep(referenceInputs(), SweepDeltaV, 0, 1000, 1, 1); err == nil {
		t.Fatal("a single point needs equal bounds")
	}
	if _, err := e.Sweep(referenceInputs(), SweepDeltaV, 0, math.Inf(1), 10, 1); err == nil {
		t.Fatal("infinite bounds accepted")
	}
	if _, err := e.Sweep(referenceInputs(), SweepParameter(42), 0, 1, 10, 1); err == nil {
		t.Fatal("unknown parameter accepted")
	}
	sweep, err := e.Sweep(referenceInputs(), SweepPayloadMass, 1000, 1000, 1, 1)
	if err != nil || len(sweep.Points) != 1 || sweep.Points[0].Value != 1000 {
		t.Fatalf("single point sweep failed: %v", err)
	}
}

func TestSweepParameterFromString(t *testing.T) {
	for p, name := range sweepNames {
		got, err := SweepParameterFromString(name)
		if err != nil || got != p {
			t.Fatalf("%s: got %s (%v)", name, got, err)
		}
	}
	if _, err := SweepParameterFromString("thrust"); err == nil {
		t.Fatal("expected an error")
	}
	if SweepDeltaV.Unit() != "m/s" || SweepContingencyFactor.Unit() != "" {
		t.Fatal("incorrect units")
	}
	in := referenceInputs()
	SweepAspectRatio.apply(&in, 2)
	SweepOpPressure.apply(&in, 3)
	SweepOxFuelRatio.apply(&in, 1)
	if in.AspectRatio != 2 || in.OpPressure != 3 || in.OxFuelRatio != 1 {
		t.Fatal("parameters not applied")
	}
}
