package stagesizer

import (
	"errors"
	"math"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// DefaultTolerance is the dry mass change (kg) under which the iteration is considered converged.
	DefaultTolerance = 0.01
	// DefaultMaxIterations caps the number of passes of the fixed point iteration.
	DefaultMaxIterations = 1000
)

// Engine sizes a propulsion stage by iterating on its dry mass until it settles.
// An Engine holds no state between calls and may be shared between goroutines.
type Engine struct {
	tolerance     float64
	maxIterations int
	debug         bool
	logger        kitlog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance sets the convergence tolerance in kg. Non positive values are ignored.
func WithTolerance(kg float64) Option {
	return func(e *Engine) {
		if positive(kg) {
			e.tolerance = kg
		}
	}
}

// WithMaxIterations sets the iteration cap. Non positive values are ignored.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithLogger sets the logger used to report failures (and iterations in debug).
func WithLogger(logger kitlog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDebug logs every pass of the iteration.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// NewEngine returns a new Engine with the default tolerance and iteration cap, and a no-op logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{tolerance: DefaultTolerance, maxIterations: DefaultMaxIterations, logger: kitlog.NewNopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = kitlog.With(e.logger, "subsys", "sizer")
	return e
}

// Tolerance returns the convergence tolerance in kg.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// MaxIterations returns the iteration cap.
func (e *Engine) MaxIterations() int {
	return e.maxIterations
}

// Calculate sizes a stage with the default engine.
func Calculate(in Inputs) (Result, error) {
	return NewEngine().Calculate(in)
}

// Calculate runs the fixed point iteration on the stage dry mass. Each pass applies the rocket
// equation to the current dry mass guess, splits the propellant between fuel and oxidizer, sizes
// both tanks and recomputes the dry mass from the payload, the tanks and the thruster.
// The returned error is a *ValidationError, a *ConvergenceError or a *DomainError; the Result is
// only populated on success.
func (e *Engine) Calculate(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		e.logger.Log("level", "warning", "status", "rejected", "err", err)
		return Result{}, err
	}
	for _, field := range in.belowUnity() {
		e.logger.Log("level", "warning", "field", field, "msg", "margin factor below 1")
	}
	// Both cannot fail after validation.
	fuelTank, _ := in.FuelTankShape.Model(in.AspectRatio)
	oxTank, _ := in.OxTankShape.Model(in.AspectRatio)
	wall := in.Wall()
	propPerKg := PropellantFraction(in.DeltaV, in.Isp) * in.ContingencyFactor

	var (
		rslt         Result
		fuelTk, oxTk TankSize
		err          error
		guess        = in.PayloadMass
		previous     float64
	)
	for {
		propellant := guess * propPerKg
		if !finite(propellant) {
			return Result{}, e.diverged(rslt.Iterations, guess, previous)
		}
		rslt.FuelMass, rslt.OxidizerMass = splitPropellant(propellant, in.OxFuelRatio)
		rslt.FuelVolume = rslt.FuelMass / in.FuelDensity
		rslt.OxidizerVolume = rslt.OxidizerMass / in.OxDensity

		if fuelTk, err = fuelTank.Size(rslt.FuelVolume, wall); err != nil {
			return Result{}, e.sizingFailure(err, rslt.Iterations, guess, previous)
		}
		if oxTk, err = oxTank.Size(rslt.OxidizerVolume, wall); err != nil {
			return Result{}, e.sizingFailure(err, rslt.Iterations, guess, previous)
		}

		previous = guess
		guess = in.PayloadMass + fuelTk.Mass + oxTk.Mass + in.ThrusterMass
		rslt.Iterations++
		if !finite(guess) {
			return Result{}, e.diverged(rslt.Iterations, guess, previous)
		}
		residual := math.Abs(guess - previous)
		rslt.History = append(rslt.History, Iteration{
			Number:           rslt.Iterations,
			DryMassGuess:     guess,
			PropellantMass:   propellant,
			FuelMass:         rslt.FuelMass,
			OxidizerMass:     rslt.OxidizerMass,
			FuelTankMass:     fuelTk.Mass,
			OxidizerTankMass: oxTk.Mass,
			Residual:         residual,
		})
		if e.debug {
			e.logger.Log("level", "debug", "iter", rslt.Iterations, "dry(kg)", guess, "prop(kg)", propellant, "Δ(kg)", residual)
		}
		if settled(guess, previous, e.tolerance) {
			break
		}
		if rslt.Iterations >= e.maxIterations {
			e.logger.Log("level", "critical", "status", "not converged", "iter", rslt.Iterations, "dry(kg)", guess, "Δ(kg)", residual)
			return Result{}, &ConvergenceError{Iterations: rslt.Iterations, LastGuess: guess, PreviousGuess: previous}
		}
	}

	rslt.FuelTankMass, rslt.OxidizerTankMass = fuelTk.Mass, oxTk.Mass
	rslt.FuelTankRadius, rslt.OxidizerTankRadius = fuelTk.Radius, oxTk.Radius
	rslt.FuelTankThickness, rslt.OxidizerTankThickness = fuelTk.Thickness, oxTk.Thickness
	rslt.SystemDryMass = in.ThrusterMass + fuelTk.Mass + oxTk.Mass
	rslt.SystemWetMass = rslt.SystemDryMass + rslt.FuelMass + rslt.OxidizerMass
	rslt.StageDryMass = guess
	rslt.StageWetMass = guess + rslt.FuelMass + rslt.OxidizerMass
	rslt.Residual = math.Abs(guess - previous)
	if e.debug {
		e.logger.Log("level", "info", "status", "converged", "iter", rslt.Iterations, "wet(kg)", rslt.StageWetMass)
	}
	return rslt, nil
}

func (e *Engine) diverged(iterations int, guess, previous float64) error {
	e.logger.Log("level", "critical", "status", "diverged", "iter", iterations, "dry(kg)", previous)
	return &ConvergenceError{Iterations: iterations, LastGuess: guess, PreviousGuess: previous, Diverged: true}
}

// sizingFailure reports an overflowing tank as a divergence, any other error as is.
func (e *Engine) sizingFailure(err error, iterations int, guess, previous float64) error {
	var de *DomainError
	if errors.As(err, &de) && math.IsInf(de.Value, 0) {
		return e.diverged(iterations, guess, previous)
	}
	e.logger.Log("level", "critical", "status", "domain error", "err", err)
	return err
}
