package relevance

import (
	"sort"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// Aggregate merges chunk-level search hits into per-guideline relevance
// hits. Hits must be ordered closest first, as the vector index returns
// them.
//
// The first hit of a guideline seeds its entry. Part-mode hits attach as
// related chunks without touching the seed score. A unified hit improves
// the entry only when its distance is strictly smaller. The result is
// sorted by score ascending (stable, so earlier guidelines win ties) and
// truncated to k.
func Aggregate(hits []*model.SearchHit, k int) []*model.RelevanceHit {
	groups := make(map[string]*model.RelevanceHit)
	var order []string

	for _, hit := range hits {
		fullID := hit.Meta.FullID.String()
		entry, ok := groups[fullID]
		if !ok {
			entry = &model.RelevanceHit{
				FullID:        fullID,
				Title:         hit.Meta.Title,
				CategoryName:  hit.Meta.CategoryName,
				URL:           hit.Meta.URL,
				Score:         hit.Distance,
				Content:       hit.Text,
				RelatedChunks: []model.RelatedChunk{},
			}
			groups[fullID] = entry
			order = append(order, fullID)
		}

		if hit.Type.IsGuidelinePart() {
			entry.RelatedChunks = append(entry.RelatedChunks, model.RelatedChunk{
				Type:    hit.Type,
				Content: hit.Text,
				Score:   hit.Distance,
			})
		} else if hit.Distance < entry.Score {
			entry.Score = hit.Distance
			entry.Content = hit.Text
		}
	}

	results := make([]*model.RelevanceHit, 0, len(order))
	for _, id := range order {
		results = append(results, groups[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
