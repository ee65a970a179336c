package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/service/relevance"
	"github.com/Google-eCarbon/ecarbon/pkg/service/structure"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/async"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/errutil"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/logging"
)

// evalConcurrency bounds concurrent guideline judgements per evaluation.
const evalConcurrency = 4

// StartWebsiteEvaluation registers a pending evaluation for the URL and
// runs the pipeline in the background. The returned record carries the
// ID the caller polls with.
func (uc *UseCases) StartWebsiteEvaluation(ctx context.Context, url string) (*model.Evaluation, error) {
	if uc.fetcher == nil {
		return nil, goerr.Wrap(ErrFetcherNotSet, "cannot evaluate website")
	}
	if uc.verdict == nil {
		return nil, goerr.Wrap(ErrVerdictNotSet, "cannot evaluate website")
	}
	if strings.TrimSpace(url) == "" {
		return nil, goerr.Wrap(ErrEmptyTarget, "URL is required")
	}
	if uc.Corpus() == nil {
		return nil, goerr.Wrap(ErrCorpusNotLoaded, "cannot evaluate website")
	}

	eval := model.NewEvaluation(url)
	if err := uc.repo.Put(ctx, eval); err != nil {
		return nil, goerr.Wrap(err, "failed to register evaluation")
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.runWebsiteEvaluation(ctx, eval.ID, url)
	})

	return eval, nil
}

// EvaluateWebsite runs the full pipeline synchronously and returns the
// result without registering a stored evaluation record.
func (uc *UseCases) EvaluateWebsite(ctx context.Context, url string) (*model.EvaluationResult, error) {
	if uc.fetcher == nil {
		return nil, goerr.Wrap(ErrFetcherNotSet, "cannot evaluate website")
	}
	if uc.verdict == nil {
		return nil, goerr.Wrap(ErrVerdictNotSet, "cannot evaluate website")
	}
	if strings.TrimSpace(url) == "" {
		return nil, goerr.Wrap(ErrEmptyTarget, "URL is required")
	}
	if uc.Corpus() == nil {
		return nil, goerr.Wrap(ErrCorpusNotLoaded, "cannot evaluate website")
	}

	return uc.evaluateWebsite(ctx, url)
}

// GetEvaluation looks up an evaluation by ID.
func (uc *UseCases) GetEvaluation(ctx context.Context, id types.EvaluationID) (*model.Evaluation, error) {
	eval, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get evaluation", goerr.V("id", id))
	}
	if eval == nil {
		return nil, goerr.Wrap(ErrEvaluationNotFound, "unknown evaluation", goerr.V("id", id))
	}
	return eval, nil
}

// ListEvaluations returns recent evaluations, newest first.
func (uc *UseCases) ListEvaluations(ctx context.Context, limit int) ([]*model.Evaluation, error) {
	return uc.repo.List(ctx, limit)
}

func (uc *UseCases) runWebsiteEvaluation(ctx context.Context, id types.EvaluationID, url string) error {
	if err := uc.repo.UpdateStatus(ctx, id, types.EvaluationRunning); err != nil {
		return errutil.Handle(ctx, err, "failed to mark evaluation running")
	}

	result, err := uc.evaluateWebsite(ctx, url)
	if err != nil {
		uc.failEvaluation(ctx, id, url, err)
		return errutil.Handle(ctx, err, "website evaluation failed")
	}

	eval, err := uc.repo.Get(ctx, id)
	if err != nil || eval == nil {
		return errutil.Handle(ctx, goerr.Wrap(err, "evaluation vanished mid-run", goerr.V("id", id)),
			"failed to finalize evaluation")
	}
	eval.Status = types.EvaluationCompleted
	eval.Result = result
	if err := uc.repo.Put(ctx, eval); err != nil {
		return errutil.Handle(ctx, err, "failed to store evaluation result")
	}

	logging.From(ctx).Info("website evaluation completed",
		"id", id, "url", url, "compliance_score", result.ComplianceScore)
	return nil
}

func (uc *UseCases) failEvaluation(ctx context.Context, id types.EvaluationID, url string, cause error) {
	eval, err := uc.repo.Get(ctx, id)
	if err != nil || eval == nil {
		logging.From(ctx).Error("failed to load evaluation for failure record", "id", id, "error", err)
		return
	}
	eval.Status = types.EvaluationFailed
	eval.Error = cause.Error()
	if err := uc.repo.Put(ctx, eval); err != nil {
		logging.From(ctx).Error("failed to record evaluation failure", "id", id, "error", err)
	}
}

// evaluateWebsite runs the full pipeline: fetch, structural analysis,
// chunking, structural guideline ranking, and per-chunk LLM verdicts.
func (uc *UseCases) evaluateWebsite(ctx context.Context, url string) (*model.EvaluationResult, error) {
	content, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch target", goerr.V("url", url))
	}

	stats, err := structure.Extract(content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to analyze page structure", goerr.V("url", url))
	}

	chunks, err := uc.htmlChunker.ChunkHTML(content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to chunk target", goerr.V("url", url))
	}

	corpus := uc.Corpus()
	candidates := relevance.RankByStructure(corpus, stats, uc.topK*2)

	// Judge candidates concurrently but keep the ranked order in the
	// result. The limit bounds in-flight LLM calls.
	results := make([]*model.GuidelineEvaluation, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(evalConcurrency)
	for i, cand := range candidates {
		guideline := corpus.Find(types.FullID(cand.FullID))
		if guideline == nil {
			continue
		}

		eg.Go(func() error {
			ge, err := uc.evaluateGuideline(egCtx, guideline, cand, chunks)
			if err != nil {
				return goerr.Wrap(err, "guideline evaluation failed",
					goerr.V("url", url), goerr.V("guideline", cand.FullID))
			}
			results[i] = ge
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	evaluations := make([]model.GuidelineEvaluation, 0, len(results))
	for _, ge := range results {
		if ge != nil {
			evaluations = append(evaluations, *ge)
		}
	}

	return &model.EvaluationResult{
		URL:             url,
		ComplianceScore: model.ComplianceScore(evaluations),
		Structure:       stats,
		Guidelines:      evaluations,
		EvaluatedAt:     time.Now().UTC(),
	}, nil
}

// evaluateGuideline judges every content chunk against one guideline and
// scores it: 1.0 with no violations, otherwise 0.5 divided by the
// violation count.
func (uc *UseCases) evaluateGuideline(ctx context.Context, g *model.Guideline, cand *model.GuidelineCandidate, chunks []model.ContentChunk) (*model.GuidelineEvaluation, error) {
	var violations []model.Verdict
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}

		v, err := uc.verdict.Judge(ctx, g, chunk.Text)
		if err != nil {
			return nil, goerr.Wrap(err, "verdict failed", goerr.V("chunk_type", chunk.Type))
		}
		if v.Violation {
			violations = append(violations, *v)
		}
	}

	score := 1.0
	if len(violations) > 0 {
		score = 0.5 / float64(len(violations))
	}

	return &model.GuidelineEvaluation{
		FullID:       types.FullID(cand.FullID),
		Title:        cand.Title,
		CategoryName: cand.CategoryName,
		Impact:       g.Impact,
		Effort:       g.Effort,
		Score:        score,
		Violations:   violations,
	}, nil
}

// EvaluateCode judges a standalone code snippet against one guideline
// synchronously.
func (uc *UseCases) EvaluateCode(ctx context.Context, code string, fullID types.FullID) (*model.GuidelineEvaluation, error) {
	if uc.verdict == nil {
		return nil, goerr.Wrap(ErrVerdictNotSet, "cannot evaluate code")
	}
	if strings.TrimSpace(code) == "" {
		return nil, goerr.Wrap(ErrEmptyTarget, "code is required")
	}

	corpus := uc.Corpus()
	if corpus == nil {
		return nil, goerr.Wrap(ErrCorpusNotLoaded, "cannot evaluate code")
	}
	guideline := corpus.Find(fullID)
	if guideline == nil {
		return nil, goerr.New("unknown guideline", goerr.V("full_id", fullID))
	}

	v, err := uc.verdict.Judge(ctx, guideline, code)
	if err != nil {
		return nil, goerr.Wrap(err, "verdict failed", goerr.V("full_id", fullID))
	}

	score := 1.0
	var violations []model.Verdict
	if v.Violation {
		score = 0.5
		violations = []model.Verdict{*v}
	}

	return &model.GuidelineEvaluation{
		FullID:     fullID,
		Title:      guideline.Title,
		Impact:     guideline.Impact,
		Effort:     guideline.Effort,
		Score:      score,
		Violations: violations,
	}, nil
}
