package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a NaN or Inf reading or level during a step.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a parameter outside its valid range.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrAlreadyRun is returned by Run on a simulation that is not fresh.
	ErrAlreadyRun = errors.New("sim: simulation already run")

	// ErrNoCones indicates an empty population.
	ErrNoCones = errors.New("sim: no growth cones")
)

// SimulationError wraps a fatal error with the step and cone it occurred on.
type SimulationError struct {
	Step    int
	ConeID  int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (cone %d): %v", e.Step, e.ConeID, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
