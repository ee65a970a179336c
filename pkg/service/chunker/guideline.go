package chunker

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// Mode selects the guideline chunking strategy.
type Mode string

const (
	// ModeByParts cuts each guideline into one chunk per semantic part
	// (main, criterion, benefit, gri, example, resource).
	ModeByParts Mode = "by_parts"

	// ModeUnified renders each guideline as a single chunk.
	ModeUnified Mode = "unified"
)

// Validate checks if the Mode is valid
func (m Mode) Validate() error {
	switch m {
	case ModeByParts, ModeUnified:
		return nil
	}
	return goerr.New("invalid chunk mode", goerr.V("mode", m))
}

// ChunkDocument chunks the whole corpus document with the given mode.
func ChunkDocument(doc *model.GuidelineDocument, mode Mode) ([]*model.Chunk, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	var chunks []*model.Chunk
	for ci := range doc.Categories {
		cat := &doc.Categories[ci]
		for gi := range cat.Guidelines {
			g := &cat.Guidelines[gi]
			meta := model.ChunkMeta{
				FullID:       types.NewFullID(cat.ID, g.ID),
				CategoryName: cat.Name,
				Title:        g.Title,
				URL:          g.URL,
			}

			var gc []*model.Chunk
			var err error
			switch mode {
			case ModeUnified:
				gc, err = chunkUnified(g, meta)
			default:
				gc, err = chunkByParts(g, meta)
			}
			if err != nil {
				return nil, goerr.Wrap(err, "failed to chunk guideline", goerr.V("full_id", meta.FullID))
			}
			chunks = append(chunks, gc...)
		}
	}
	return chunks, nil
}

func chunkByParts(g *model.Guideline, meta model.ChunkMeta) ([]*model.Chunk, error) {
	var chunks []*model.Chunk
	add := func(text string, chunkType model.ChunkType, m model.ChunkMeta) error {
		c, err := model.NewGuidelineChunk(text, chunkType, m)
		if err != nil {
			return err
		}
		chunks = append(chunks, &c)
		return nil
	}

	mainText := "Guideline: " + g.Title + "\nIntent: " + g.Intent
	if err := add(mainText, model.ChunkTypeMain, meta); err != nil {
		return nil, err
	}

	for _, c := range g.Criteria {
		text := "Criterion: " + c.Title + "\nDescription: " + c.Description
		if c.Testable != "" {
			text += "\nTestable: " + c.Testable
		}
		m := meta
		m.CriterionTitle = c.Title
		if err := add(text, model.ChunkTypeCriterion, m); err != nil {
			return nil, err
		}
	}

	for _, entry := range g.BenefitEntries() {
		text := "Benefit - " + entry[0] + ":\n" + entry[1]
		m := meta
		m.BenefitCategory = entry[0]
		if err := add(text, model.ChunkTypeBenefit, m); err != nil {
			return nil, err
		}
	}

	if entries := g.GRIEntries(); len(entries) > 0 {
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, e[0]+": "+e[1])
		}
		text := "GRI Metrics:\n" + strings.Join(lines, "\n")
		if err := add(text, model.ChunkTypeGRI, meta); err != nil {
			return nil, err
		}
	}

	if len(g.Examples) > 0 {
		lines := make([]string, 0, len(g.Examples))
		for _, ex := range g.Examples {
			lines = append(lines, ex.Content)
		}
		text := "Examples:\n" + strings.Join(lines, "\n")
		if err := add(text, model.ChunkTypeExample, meta); err != nil {
			return nil, err
		}
	}

	if entries := g.ResourceEntries(); len(entries) > 0 {
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, e[0]+": "+e[1])
		}
		text := "Resources:\n" + strings.Join(lines, "\n")
		if err := add(text, model.ChunkTypeResource, meta); err != nil {
			return nil, err
		}
	}

	return chunks, nil
}

func chunkUnified(g *model.Guideline, meta model.ChunkMeta) ([]*model.Chunk, error) {
	var parts []string

	parts = append(parts, "Title: "+g.Title)
	parts = append(parts, "Intent: "+g.Intent+"\n")

	if len(g.Criteria) > 0 {
		parts = append(parts, "Criteria:")
		for _, c := range g.Criteria {
			parts = append(parts, "- "+c.Description)
		}
		parts = append(parts, "")
	}

	if entries := g.BenefitEntries(); len(entries) > 0 {
		parts = append(parts, "Benefits:")
		for _, e := range entries {
			parts = append(parts, e[0]+":", "- "+e[1])
		}
		parts = append(parts, "")
	}

	if entries := g.GRIEntries(); len(entries) > 0 {
		parts = append(parts, "GRI Metrics:")
		for _, e := range entries {
			parts = append(parts, "- "+e[0]+": "+e[1])
		}
		parts = append(parts, "")
	}

	if len(g.Examples) > 0 {
		parts = append(parts, "Examples:")
		for _, ex := range g.Examples {
			parts = append(parts, "- "+ex.Content)
		}
		parts = append(parts, "")
	}

	if entries := g.ResourceEntries(); len(entries) > 0 {
		parts = append(parts, "Resources:")
		for _, e := range entries {
			parts = append(parts, "- "+e[0]+": "+e[1])
		}
	}

	c, err := model.NewGuidelineChunk(strings.Join(parts, "\n"), model.ChunkTypeUnified, meta)
	if err != nil {
		return nil, err
	}
	c.EmbedText = g.EmbeddingText()
	return []*model.Chunk{&c}, nil
}
