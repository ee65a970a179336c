package relevance

import (
	"sort"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// RelevantTags derives the set of guideline tags a page's structure
// makes relevant. Every page gets the UI and Usability baseline; media
// and accessibility findings widen the set.
func RelevantTags(stats *model.StructureStats) []string {
	set := map[string]bool{
		"UI":        true,
		"Usability": true,
	}

	if stats.TotalImages > 0 {
		set["Image"] = true
		set["Assets"] = true
		set["Performance"] = true
	}
	if stats.ImagesWithAlt < stats.TotalImages {
		set["Accessibility"] = true
	}
	if stats.TotalForms > 0 {
		set["Forms"] = true
	}
	if stats.TotalScripts > 0 || stats.InlineScripts > 0 {
		set["Javascript"] = true
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Weight is the structural relevance weight of a guideline: high impact
// and low effort rank first.
func Weight(g *model.Guideline) float64 {
	return g.Impact.Factor() * g.Effort.Factor()
}

// RankByStructure selects guidelines whose tags intersect the page's
// relevant tags and orders them by weight descending. Ties keep corpus
// document order. topK of 0 means no truncation.
func RankByStructure(doc *model.GuidelineDocument, stats *model.StructureStats, topK int) []*model.GuidelineCandidate {
	tags := RelevantTags(stats)

	var candidates []*model.GuidelineCandidate
	for ci := range doc.Categories {
		cat := &doc.Categories[ci]
		for gi := range cat.Guidelines {
			g := &cat.Guidelines[gi]

			var matched []string
			for _, t := range tags {
				if g.HasTag(t) {
					matched = append(matched, t)
				}
			}
			if len(matched) == 0 {
				continue
			}

			candidates = append(candidates, &model.GuidelineCandidate{
				FullID:       types.NewFullID(cat.ID, g.ID).String(),
				Title:        g.Title,
				CategoryName: cat.Name,
				URL:          g.URL,
				Impact:       g.Impact.String(),
				Effort:       g.Effort.String(),
				Weight:       Weight(g),
				MatchedTags:  matched,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Weight > candidates[j].Weight
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}
