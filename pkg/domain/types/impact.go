package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Impact represents how much a guideline contributes to sustainability
// when followed.
type Impact string

const (
	ImpactLow    Impact = "Low"
	ImpactMedium Impact = "Medium"
	ImpactHigh   Impact = "High"
)

// Validate checks if the Impact is one of the known levels
func (i Impact) Validate() error {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return nil
	}
	return goerr.New("invalid impact level", goerr.V("impact", i))
}

// Factor returns the relevance weight multiplier for the impact level.
// Higher impact guidelines weigh more.
func (i Impact) Factor() float64 {
	switch i {
	case ImpactHigh:
		return 3.0
	case ImpactMedium:
		return 2.0
	default:
		return 1.0
	}
}

// String returns the string representation of Impact
func (i Impact) String() string {
	return string(i)
}
