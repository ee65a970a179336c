package model_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewEvaluation(t *testing.T) {
	eval := model.NewEvaluation("https://example.com")

	gt.NoError(t, eval.ID.Validate()).Required()
	gt.Value(t, eval.URL).Equal("https://example.com")
	gt.Value(t, eval.Status).Equal(types.EvaluationPending)
	gt.Value(t, eval.Result).Nil()
	gt.B(t, eval.CreatedAt.IsZero()).False()
}

func TestComplianceScoreEmpty(t *testing.T) {
	gt.Value(t, model.ComplianceScore(nil)).Equal(100.0)
}

func TestComplianceScoreAllPassing(t *testing.T) {
	evals := []model.GuidelineEvaluation{
		{FullID: "2-1", Impact: types.ImpactHigh, Effort: types.EffortLow, Score: 1.0},
		{FullID: "2-2", Impact: types.ImpactLow, Effort: types.EffortHigh, Score: 1.0},
	}
	gt.B(t, almostEqual(model.ComplianceScore(evals), 100.0)).True()
}

func TestComplianceScoreWeighted(t *testing.T) {
	// High impact / low effort guideline fails completely, the light
	// one passes. The failure dominates because its weight is larger.
	evals := []model.GuidelineEvaluation{
		{FullID: "2-1", Impact: types.ImpactHigh, Effort: types.EffortLow, Score: 0.0},
		{FullID: "2-2", Impact: types.ImpactLow, Effort: types.EffortHigh, Score: 1.0},
	}

	wFail := types.ImpactHigh.Factor() * types.EffortLow.Factor()
	wPass := types.ImpactLow.Factor() * types.EffortHigh.Factor()
	want := wPass / (wFail + wPass) * 100.0

	got := model.ComplianceScore(evals)
	gt.B(t, almostEqual(got, want)).True()
	gt.B(t, got < 50.0).True()
}

func TestSimilarityBounds(t *testing.T) {
	gt.Value(t, model.Similarity(0.0)).Equal(1.0)
	gt.Value(t, model.Similarity(1.0)).Equal(0.0)
	gt.Value(t, model.Similarity(1.5)).Equal(0.0)
	gt.Value(t, model.Similarity(-0.5)).Equal(1.0)
	gt.B(t, almostEqual(model.Similarity(0.25), 0.75)).True()
}
