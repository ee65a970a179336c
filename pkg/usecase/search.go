package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/service/relevance"
)

// SearchResult is one guideline returned by SearchGuidelines with its
// caller-facing similarity.
type SearchResult struct {
	Guideline     *model.RelevanceHit `json:"guideline"`
	Similarity    float64             `json:"similarity"`
	RelevanceRank int                 `json:"relevance_rank"`
}

// SearchGuidelines embeds the query, retrieves twice the requested
// number of chunk hits, and merges them into at most k guideline
// results. Distances convert to similarities only here, at the boundary.
func (uc *UseCases) SearchGuidelines(ctx context.Context, query string, k int) ([]*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(ErrEmptyQuery, "search rejected")
	}
	if k <= 0 {
		k = uc.topK
	}

	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	// Over-fetch so that part chunks of the same guideline collapse
	// into one result without starving the tail.
	hits, err := uc.index.Query(ctx, vector, k*2)
	if err != nil {
		return nil, goerr.Wrap(err, "vector query failed")
	}

	merged := relevance.Aggregate(hits, k)
	results := make([]*SearchResult, 0, len(merged))
	for i, hit := range merged {
		results = append(results, &SearchResult{
			Guideline:     hit,
			Similarity:    model.Similarity(hit.Score),
			RelevanceRank: i + 1,
		})
	}
	return results, nil
}
