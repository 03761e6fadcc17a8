package stagesizer

import (
	"fmt"
)

// ValidationError is returned when an input is outside of its physical domain. No iteration is attempted.
type ValidationError struct {
	Field  string  // snake_case name of the offending input
	Value  float64 // value which was provided
	Reason string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// ConvergenceError is returned when the dry mass did not settle within the tolerance.
type ConvergenceError struct {
	Iterations    int     // passes performed
	LastGuess     float64 // kg, last dry mass guess
	PreviousGuess float64 // kg, guess before the last one
	Diverged      bool    // true if the guess stopped being a finite number
}

// Error returns the error message for ConvergenceError.
func (e *ConvergenceError) Error() string {
	if e.Diverged {
		last := e.LastGuess
		if !finite(last) {
			last = e.PreviousGuess
		}
		return fmt.Sprintf("dry mass diverged after %d iterations (last finite guess %g kg)", e.Iterations, last)
	}
	return fmt.Sprintf("dry mass did not converge after %d iterations (last guess %.4f kg, Δ=%.4f kg)", e.Iterations, e.LastGuess, e.LastGuess-e.PreviousGuess)
}

// DomainError flags a numerical invariant violation, e.g. a negative tank volume.
// Input validation should make it unreachable.
type DomainError struct {
	Op    string
	Value float64
}

// Error returns the error message for DomainError.
func (e *DomainError) Error() string {
	return fmt.Sprintf("numeric domain error in %s: %g", e.Op, e.Value)
}
