package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Effort represents how costly a guideline is to implement.
type Effort string

const (
	EffortLow    Effort = "Low"
	EffortMedium Effort = "Medium"
	EffortHigh   Effort = "High"
)

// Validate checks if the Effort is one of the known levels
func (e Effort) Validate() error {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return nil
	}
	return goerr.New("invalid effort level", goerr.V("effort", e))
}

// Factor returns the relevance weight multiplier for the effort level.
// Lower effort guidelines are favored so that easy wins surface first.
func (e Effort) Factor() float64 {
	switch e {
	case EffortLow:
		return 1.2
	case EffortHigh:
		return 0.8
	default:
		return 1.0
	}
}

// String returns the string representation of Effort
func (e Effort) String() string {
	return string(e)
}
