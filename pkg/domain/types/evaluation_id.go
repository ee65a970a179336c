package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// EvaluationID identifies an evaluation task.
type EvaluationID string

// NewEvaluationID issues a new random EvaluationID.
func NewEvaluationID() EvaluationID {
	return EvaluationID(uuid.NewString())
}

// Validate checks if the EvaluationID is valid
func (e EvaluationID) Validate() error {
	if e == "" {
		return goerr.New("evaluation ID cannot be empty")
	}
	if _, err := uuid.Parse(string(e)); err != nil {
		return goerr.Wrap(err, "invalid evaluation ID", goerr.V("id", e))
	}
	return nil
}

// String returns the string representation of EvaluationID
func (e EvaluationID) String() string {
	return string(e)
}
