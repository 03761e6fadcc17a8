package stagesizer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestPropellantFraction(t *testing.T) {
	if PropellantFraction(0, 300) != 0 {
		t.Fatal("no Δv should need no propellant")
	}
	if !scalar.EqualWithinRel(PropellantFraction(1470, 340), 0.554535007845434, 1e-12) {
		t.Fatalf("incorrect fraction %f", PropellantFraction(1470, 340))
	}
	// m0/mf = e at Δv = Isp*g0
	if !scalar.EqualWithinRel(PropellantFraction(300*StandardGravity, 300), math.E-1, 1e-12) {
		t.Fatal("incorrect fraction at Δv = Isp*g0")
	}
}

func TestShellCube(t *testing.T) {
	for _, c := range [][2]float64{{1, 0.01}, {0.5, 0.5}, {2.3, 1e-4}, {0, 1}} {
		r, th := c[0], c[1]
		exp := math.Pow(r+th, 3) - math.Pow(r, 3)
		if !scalar.EqualWithinRel(shellCube(r, th), exp, 1e-9) {
			t.Fatalf("r=%f t=%f: got %f expected %f", r, th, shellCube(r, th), exp)
		}
	}
}

func TestSplitPropellant(t *testing.T) {
	fuel, ox := splitPropellant(241, 1.41)
	if !scalar.EqualWithinAbs(fuel, 100, 1e-12) || !scalar.EqualWithinAbs(ox, 141, 1e-12) {
		t.Fatalf("got fuel=%f ox=%f", fuel, ox)
	}
	fuel, ox = splitPropellant(50, 0)
	if fuel != 50 || ox != 0 {
		t.Fatalf("monopropellant split: fuel=%f ox=%f", fuel, ox)
	}
}

func TestSettled(t *testing.T) {
	if !settled(100.005, 100, 0.01) || settled(100.02, 100, 0.01) || settled(math.NaN(), 100, 0.01) {
		t.Fatal("incorrect tolerance check")
	}
}
