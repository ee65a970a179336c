package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/repository/memory"
	"github.com/Google-eCarbon/ecarbon/pkg/service/vectorindex"
	"github.com/Google-eCarbon/ecarbon/pkg/usecase"
)

// mockEmbedder maps known texts to fixed 3-dimensional vectors so that
// nearest-neighbor results are deterministic.
type mockEmbedder struct {
	vectors  map[string][]float64
	fallback []float64
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
		} else if m.fallback != nil {
			out[i] = m.fallback
		} else {
			out[i] = []float64{0, 0, 1}
		}
	}
	return out, nil
}

type mockFetcher struct {
	body string
	err  error
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.body, nil
}

type mockVerdict struct {
	verdicts map[string]*model.Verdict
	calls    atomic.Int64
}

func (m *mockVerdict) Judge(ctx context.Context, g *model.Guideline, chunk string) (*model.Verdict, error) {
	m.calls.Add(1)
	if v, ok := m.verdicts[string(g.ID)]; ok {
		return v, nil
	}
	return &model.Verdict{Violation: false, Explanation: "no issue found"}, nil
}

func testCorpus() *model.GuidelineDocument {
	return &model.GuidelineDocument{
		Categories: []model.Category{
			{
				ID:   "2",
				Name: "User Experience Design",
				Guidelines: []model.Guideline{
					{
						ID: "1", Title: "Compress Your Images",
						Intent: "Smaller images cost less energy to transfer.",
						URL:    "https://example.com/2-1",
						Impact: types.ImpactHigh, Effort: types.EffortLow,
						Tags: []string{"Image", "Performance"},
					},
					{
						ID: "2", Title: "Write Clear Navigation",
						Intent: "Users find content faster with clear navigation.",
						URL:    "https://example.com/2-2",
						Impact: types.ImpactMedium, Effort: types.EffortMedium,
						Tags: []string{"UI", "Usability"},
					},
				},
			},
		},
	}
}

func mainChunkText(title, intent string) string {
	return "Guideline: " + title + "\nIntent: " + intent
}

func newTestUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *mockEmbedder) {
	t.Helper()

	embedder := &mockEmbedder{
		vectors: map[string][]float64{
			mainChunkText("Compress Your Images", "Smaller images cost less energy to transfer."):     {1, 0, 0},
			mainChunkText("Write Clear Navigation", "Users find content faster with clear navigation."): {0, 1, 0},
			"image compression": {1, 0, 0},
			"site navigation":   {0, 1, 0},
		},
	}

	uc := usecase.New(embedder, vectorindex.New(3), memory.New(), opts...)
	return uc, embedder
}

func TestReloadCorpusAndSearch(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCases(t)

	gt.NoError(t, uc.ReloadCorpus(ctx, testCorpus())).Required()

	results, err := uc.SearchGuidelines(ctx, "image compression", 2)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2).Required()

	gt.Value(t, results[0].Guideline.FullID).Equal("2-1")
	gt.Value(t, results[0].Guideline.Title).Equal("Compress Your Images")
	gt.Value(t, results[0].RelevanceRank).Equal(1)
	gt.Value(t, results[0].Similarity).Equal(1.0)
	gt.Value(t, results[1].Guideline.FullID).Equal("2-2")
	gt.B(t, results[1].Similarity < results[0].Similarity).True()
}

func TestSearchBeforeReload(t *testing.T) {
	uc, _ := newTestUseCases(t)

	_, err := uc.SearchGuidelines(context.Background(), "anything", 5)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, vectorindex.ErrIndexNotReady)).True()
}

func TestSearchEmptyQuery(t *testing.T) {
	uc, _ := newTestUseCases(t)

	_, err := uc.SearchGuidelines(context.Background(), "   ", 5)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrEmptyQuery)).True()
}

func TestReloadCorpusRejectsInvalid(t *testing.T) {
	uc, _ := newTestUseCases(t)

	doc := testCorpus()
	doc.Categories[0].Guidelines[1].ID = "1" // duplicate full ID
	gt.Error(t, uc.ReloadCorpus(context.Background(), doc))
	gt.Value(t, uc.Corpus()).Nil()
}

func waitForTerminal(t *testing.T, uc *usecase.UseCases, id types.EvaluationID) *model.Evaluation {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		eval, err := uc.GetEvaluation(context.Background(), id)
		gt.NoError(t, err).Required()
		if eval.Status.IsTerminal() {
			return eval
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("evaluation did not reach a terminal state")
	return nil
}

func TestEvaluateWebsite(t *testing.T) {
	ctx := context.Background()

	verdicts := &mockVerdict{
		verdicts: map[string]*model.Verdict{
			"1": {Violation: true, Explanation: "images are uncompressed", SuggestedFix: "serve WebP"},
		},
	}
	uc, _ := newTestUseCases(t,
		usecase.WithFetcher(&mockFetcher{body: `<html><body>
			<main><img src="huge.png"><p>Welcome to our site.</p></main>
		</body></html>`}),
		usecase.WithVerdictClient(verdicts),
	)
	gt.NoError(t, uc.ReloadCorpus(ctx, testCorpus())).Required()

	eval, err := uc.StartWebsiteEvaluation(ctx, "https://target.example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, eval.Status).Equal(types.EvaluationPending)

	done := waitForTerminal(t, uc, eval.ID)
	gt.Value(t, done.Status).Equal(types.EvaluationCompleted)
	gt.Value(t, done.Result).NotNil().Required()

	result := done.Result
	gt.Value(t, result.Structure.TotalImages).Equal(1)
	gt.Value(t, result.Structure.ImagesWithAlt).Equal(0)

	// both guidelines matched: 2-1 via Image tag, 2-2 via the baseline
	gt.Array(t, result.Guidelines).Length(2).Required()

	// highest weight first: Compress Your Images (3.6), one violation
	gt.Value(t, result.Guidelines[0].FullID).Equal(types.FullID("2-1"))
	gt.Value(t, result.Guidelines[0].Score).Equal(0.5)
	gt.Array(t, result.Guidelines[0].Violations).Length(1)

	gt.Value(t, result.Guidelines[1].FullID).Equal(types.FullID("2-2"))
	gt.Value(t, result.Guidelines[1].Score).Equal(1.0)

	gt.B(t, result.ComplianceScore > 0 && result.ComplianceScore < 100).True()
}

func TestEvaluateWebsiteFetchFailure(t *testing.T) {
	ctx := context.Background()

	uc, _ := newTestUseCases(t,
		usecase.WithFetcher(&mockFetcher{err: errors.New("connection refused")}),
		usecase.WithVerdictClient(&mockVerdict{}),
	)
	gt.NoError(t, uc.ReloadCorpus(ctx, testCorpus())).Required()

	eval, err := uc.StartWebsiteEvaluation(ctx, "https://down.example.com")
	gt.NoError(t, err).Required()

	done := waitForTerminal(t, uc, eval.ID)
	gt.Value(t, done.Status).Equal(types.EvaluationFailed)
	gt.Value(t, done.Error).NotEqual("")
	gt.Value(t, done.Result).Nil()
}

func TestEvaluateWebsiteRequiresCorpus(t *testing.T) {
	uc, _ := newTestUseCases(t,
		usecase.WithFetcher(&mockFetcher{body: "<html></html>"}),
		usecase.WithVerdictClient(&mockVerdict{}),
	)

	_, err := uc.StartWebsiteEvaluation(context.Background(), "https://target.example.com")
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrCorpusNotLoaded)).True()
}

func TestEvaluateCode(t *testing.T) {
	ctx := context.Background()

	verdicts := &mockVerdict{
		verdicts: map[string]*model.Verdict{
			"1": {Violation: true, Explanation: "PNG used where WebP fits"},
		},
	}
	uc, _ := newTestUseCases(t, usecase.WithVerdictClient(verdicts))
	gt.NoError(t, uc.ReloadCorpus(ctx, testCorpus())).Required()

	ge, err := uc.EvaluateCode(ctx, `<img src="huge.png">`, "2-1")
	gt.NoError(t, err).Required()
	gt.Value(t, ge.Score).Equal(0.5)
	gt.Array(t, ge.Violations).Length(1)

	ge, err = uc.EvaluateCode(ctx, `<nav>clean</nav>`, "2-2")
	gt.NoError(t, err).Required()
	gt.Value(t, ge.Score).Equal(1.0)

	_, err = uc.EvaluateCode(ctx, `<div></div>`, "9-9")
	gt.Error(t, err)
}

func TestGetEvaluationNotFound(t *testing.T) {
	uc, _ := newTestUseCases(t)

	_, err := uc.GetEvaluation(context.Background(), types.NewEvaluationID())
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrEvaluationNotFound)).True()
}
