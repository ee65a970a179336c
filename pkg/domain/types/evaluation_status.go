package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// EvaluationStatus represents the lifecycle state of an evaluation task.
// Transitions: Pending -> Running -> Completed | Failed. Completed and
// Failed are terminal.
type EvaluationStatus string

const (
	EvaluationPending   EvaluationStatus = "pending"
	EvaluationRunning   EvaluationStatus = "running"
	EvaluationCompleted EvaluationStatus = "completed"
	EvaluationFailed    EvaluationStatus = "failed"
)

// Validate checks if the EvaluationStatus is valid
func (s EvaluationStatus) Validate() error {
	switch s {
	case EvaluationPending, EvaluationRunning, EvaluationCompleted, EvaluationFailed:
		return nil
	}
	return goerr.New("invalid evaluation status", goerr.V("status", s))
}

// IsTerminal returns true when no further transitions are allowed.
func (s EvaluationStatus) IsTerminal() bool {
	return s == EvaluationCompleted || s == EvaluationFailed
}

// CanTransitionTo checks whether the transition from s to next is legal.
func (s EvaluationStatus) CanTransitionTo(next EvaluationStatus) bool {
	switch s {
	case EvaluationPending:
		return next == EvaluationRunning || next == EvaluationFailed
	case EvaluationRunning:
		return next == EvaluationCompleted || next == EvaluationFailed
	}
	return false
}

// String returns the string representation of EvaluationStatus
func (s EvaluationStatus) String() string {
	return string(s)
}
