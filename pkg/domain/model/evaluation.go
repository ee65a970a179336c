package model

import (
	"time"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// Verdict is the per-guideline judgement for one evaluated target.
type Verdict struct {
	Violation    bool   `json:"violation"`
	Explanation  string `json:"explanation"`
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// GuidelineEvaluation pairs a guideline with its verdicts across the
// target's chunks and the resulting score. Score is 1.0 when no chunk
// violates the guideline, otherwise 0.5 divided by the violation count.
type GuidelineEvaluation struct {
	FullID       types.FullID `json:"guideline_id"`
	Title        string       `json:"title"`
	CategoryName string       `json:"category_name"`
	Impact       types.Impact `json:"impact"`
	Effort       types.Effort `json:"effort"`
	Score        float64      `json:"score"`
	Violations   []Verdict    `json:"violations,omitempty"`
}

// EvaluationResult is the completed output of an evaluation run.
type EvaluationResult struct {
	URL             string                `json:"url"`
	ComplianceScore float64               `json:"compliance_score"`
	Structure       *StructureStats       `json:"structure,omitempty"`
	Guidelines      []GuidelineEvaluation `json:"guidelines"`
	EvaluatedAt     time.Time             `json:"evaluated_at"`
}

// Evaluation is the stored record of an evaluation request and its
// lifecycle. Result is nil until the run completes, Error is empty
// unless it failed.
type Evaluation struct {
	ID        types.EvaluationID     `json:"id"`
	URL       string                 `json:"url"`
	Status    types.EvaluationStatus `json:"status"`
	Result    *EvaluationResult      `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewEvaluation creates a pending evaluation for the given URL.
func NewEvaluation(url string) *Evaluation {
	now := time.Now()
	return &Evaluation{
		ID:        types.NewEvaluationID(),
		URL:       url,
		Status:    types.EvaluationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ComplianceScore computes the impact/effort weighted compliance of a
// set of guideline evaluations as a 0..100 percentage. An empty set
// scores 100.
func ComplianceScore(evals []GuidelineEvaluation) float64 {
	var total, max float64
	for _, e := range evals {
		w := e.Impact.Factor() * e.Effort.Factor()
		total += e.Score * w
		max += w
	}
	if max == 0 {
		return 100.0
	}
	return total / max * 100.0
}
