package verdict_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gt"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/service/verdict"
)

func TestNewRequiresClient(t *testing.T) {
	_, err := verdict.New(nil)
	gt.Error(t, err)
}

func TestJudge_WithRealGemini(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT not set")
	}

	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		t.Skip("TEST_GEMINI_LOCATION not set")
	}

	ctx := context.Background()

	llmClient, err := gemini.New(ctx, projectID, location)
	gt.NoError(t, err).Required()

	svc, err := verdict.New(llmClient)
	gt.NoError(t, err).Required()

	guideline := &model.Guideline{
		ID:     "11",
		Title:  "Ensure All Images Have Alternative Text",
		Intent: "Images without alternative text waste assistive technology processing and exclude users.",
		Impact: types.ImpactHigh,
		Effort: types.EffortLow,
		Criteria: []model.Criterion{
			{
				Title:       "Alternative Text",
				Description: "Every informative image carries a descriptive alt attribute.",
			},
		},
	}

	t.Run("violating fragment is flagged", func(t *testing.T) {
		v, err := svc.Judge(ctx, guideline,
			`<main><img src="hero.jpg"><img src="chart.png"><p>Quarterly results</p></main>`)
		gt.NoError(t, err).Required()
		gt.B(t, v.Violation).True()
		gt.Value(t, v.Explanation).NotEqual("")
	})

	t.Run("compliant fragment passes", func(t *testing.T) {
		v, err := svc.Judge(ctx, guideline,
			`<main><img src="hero.jpg" alt="Team planting trees"><p>Quarterly results</p></main>`)
		gt.NoError(t, err).Required()
		gt.B(t, v.Violation).False()
	})
}
