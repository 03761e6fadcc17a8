package stagesizer

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// SweepParameter is the input varied by a sweep.
type SweepParameter uint8

const (
	// SweepDeltaV varies the required Δv (m/s).
	SweepDeltaV SweepParameter = iota + 1
	// SweepIsp varies the specific impulse (s).
	SweepIsp
	// SweepPayloadMass varies the mass above the stage (kg).
	SweepPayloadMass
	// SweepOpPressure varies the tank operating pressure (MPa).
	SweepOpPressure
	// SweepContingencyFactor varies the propellant margin.
	SweepContingencyFactor
	// SweepOxFuelRatio varies the mixture ratio.
	SweepOxFuelRatio
	// SweepAspectRatio varies the cylindrical tank aspect ratio.
	SweepAspectRatio
)

var sweepNames = map[SweepParameter]string{
	SweepDeltaV:            "delta_v",
	SweepIsp:               "isp",
	SweepPayloadMass:       "payload_mass",
	SweepOpPressure:        "op_pressure",
	SweepContingencyFactor: "contingency_factor",
	SweepOxFuelRatio:       "ox_fuel_ratio",
	SweepAspectRatio:       "aspect_ratio",
}

var sweepUnits = map[SweepParameter]string{
	SweepDeltaV:      "m/s",
	SweepIsp:         "s",
	SweepPayloadMass: "kg",
	SweepOpPressure:  "MPa",
}

func (p SweepParameter) String() string {
	if name, ok := sweepNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SweepParameter(%d)", uint8(p))
}

// Unit returns the unit of this parameter, or an empty string if dimensionless.
func (p SweepParameter) Unit() string {
	return sweepUnits[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p SweepParameter) MarshalText() ([]byte, error) {
	if _, ok := sweepNames[p]; !ok {
		return nil, fmt.Errorf("unknown sweep parameter %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SweepParameter) UnmarshalText(text []byte) error {
	param, err := SweepParameterFromString(string(text))
	if err != nil {
		return err
	}
	*p = param
	return nil
}

// SweepParameterFromString returns the sweep parameter from its input name (e.g. "delta_v").
func SweepParameterFromString(name string) (SweepParameter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range sweepNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown sweep parameter `%s`", name)
}

func (p SweepParameter) apply(in *Inputs, value float64) {
	switch p {
	case SweepDeltaV:
		in.DeltaV = value
	case SweepIsp:
		in.Isp = value
	case SweepPayloadMass:
		in.PayloadMass = value
	case SweepOpPressure:
		in.OpPressure = value
	case SweepContingencyFactor:
		in.ContingencyFactor = value
	case SweepOxFuelRatio:
		in.OxFuelRatio = value
	case SweepAspectRatio:
		in.AspectRatio = value
	}
}

// SweepPoint stores the outcome of one point of a sweep. Err is nil if the point converged.
type SweepPoint struct {
	Value  float64 `json:"value"`
	Result Result  `json:"result"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}

// Sweep stores a one dimensional parameter sweep.
type Sweep struct {
	Parameter SweepParameter `json:"parameter"`
	Base      Inputs         `json:"base"`
	Points    []SweepPoint   `json:"points"`
}

// Failures returns the number of points which did not produce a result.
func (s Sweep) Failures() (n int) {
	for _, pt := range s.Points {
		if pt.Err != nil {
			n++
		}
	}
	return
}

// Sweep evaluates Calculate on `points` evenly spaced values of the parameter between from and to (inclusive),
// using at most `cpus` goroutines (all CPUs if cpus <= 0). A point which fails keeps its error and does not
// stop the sweep. The iteration history of each point is dropped.
func (e *Engine) Sweep(base Inputs, param SweepParameter, from, to float64, points, cpus int) (Sweep, error) {
	if _, ok := sweepNames[param]; !ok {
		return Sweep{}, fmt.Errorf("unknown sweep parameter %d", uint8(param))
	}
	if !finite(from) || !finite(to) {
		return Sweep{}, errors.New("sweep bounds must be finite")
	}
	var grid []float64
	switch {
	case points == 1 && from == to:
		grid = []float64{from}
	case points >= 2:
		grid = floats.Span(make([]float64, points), from, to)
	default:
		return Sweep{}, fmt.Errorf("a sweep needs at least two points (got %d)", points)
	}

	availableCPUs := runtime.NumCPU()
	if cpus <= 0 || cpus > availableCPUs {
		cpus = availableCPUs
	}
	e.logger.Log("level", "info", "op", "sweep", "param", param, "from", from, "to", to, "points", len(grid), "cpus", cpus)

	sweep := Sweep{Parameter: param, Base: base, Points: make([]SweepPoint, len(grid))}
	cpuChan := make(chan bool, cpus)
	var wg sync.WaitGroup
	for i, value := range grid {
		cpuChan <- true
		wg.Add(1)
		go func(i int, value float64) {
			defer func() {
				<-cpuChan
				wg.Done()
			}()
			in := base
			param.apply(&in, value)
			rslt, err := e.Calculate(in)
			rslt.History = nil
			pt := SweepPoint{Value: value, Result: rslt, Err: err}
			if err != nil {
				pt.Error = err.Error()
			}
			sweep.Points[i] = pt
		}(i, value)
	}
	wg.Wait()
	if n := sweep.Failures(); n > 0 {
		e.logger.Log("level", "warning", "op", "sweep", "param", param, "failures", n)
	}
	return sweep, nil
}
