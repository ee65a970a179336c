package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

func TestEvaluationStatusTransitions(t *testing.T) {
	cases := []struct {
		from types.EvaluationStatus
		to   types.EvaluationStatus
		ok   bool
	}{
		{types.EvaluationPending, types.EvaluationRunning, true},
		{types.EvaluationPending, types.EvaluationFailed, true},
		{types.EvaluationPending, types.EvaluationCompleted, false},
		{types.EvaluationRunning, types.EvaluationCompleted, true},
		{types.EvaluationRunning, types.EvaluationFailed, true},
		{types.EvaluationRunning, types.EvaluationPending, false},
		{types.EvaluationCompleted, types.EvaluationRunning, false},
		{types.EvaluationCompleted, types.EvaluationFailed, false},
		{types.EvaluationFailed, types.EvaluationRunning, false},
	}

	for _, c := range cases {
		gt.Value(t, c.from.CanTransitionTo(c.to)).Equal(c.ok)
	}
}

func TestEvaluationStatusIsTerminal(t *testing.T) {
	gt.B(t, types.EvaluationPending.IsTerminal()).False()
	gt.B(t, types.EvaluationRunning.IsTerminal()).False()
	gt.B(t, types.EvaluationCompleted.IsTerminal()).True()
	gt.B(t, types.EvaluationFailed.IsTerminal()).True()
}

func TestEvaluationStatusValidate(t *testing.T) {
	gt.NoError(t, types.EvaluationPending.Validate())
	gt.Error(t, types.EvaluationStatus("queued").Validate())
}

func TestNewEvaluationID(t *testing.T) {
	id := types.NewEvaluationID()
	gt.NoError(t, id.Validate())
	gt.Value(t, id).NotEqual(types.NewEvaluationID())
}

func TestFullIDComposition(t *testing.T) {
	gt.Value(t, types.NewFullID("2", "11")).Equal(types.FullID("2-11"))
	gt.NoError(t, types.FullID("2-11").Validate())
	gt.Error(t, types.FullID("").Validate())
}

func TestWeightFactors(t *testing.T) {
	gt.Value(t, types.ImpactHigh.Factor()).Equal(3.0)
	gt.Value(t, types.ImpactMedium.Factor()).Equal(2.0)
	gt.Value(t, types.ImpactLow.Factor()).Equal(1.0)
	gt.Value(t, types.EffortLow.Factor()).Equal(1.2)
	gt.Value(t, types.EffortMedium.Factor()).Equal(1.0)
	gt.Value(t, types.EffortHigh.Factor()).Equal(0.8)
}
