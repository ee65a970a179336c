package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// ChunkType classifies the origin of a chunk within its guideline, or
// the structural tag it was cut from for target-document chunks.
type ChunkType string

const (
	ChunkTypeUnified   ChunkType = "unified"
	ChunkTypeMain      ChunkType = "main"
	ChunkTypeCriterion ChunkType = "criterion"
	ChunkTypeBenefit   ChunkType = "benefit"
	ChunkTypeGRI       ChunkType = "gri"
	ChunkTypeExample   ChunkType = "example"
	ChunkTypeResource  ChunkType = "resource"

	// Target-document chunk types. Section chunks use the source tag
	// name (with a "_sub" suffix when re-split); these two cover the
	// fallback paths.
	ChunkTypeEmpty    ChunkType = "empty"
	ChunkTypeFullHTML ChunkType = "full_html"
)

// IsGuidelinePart reports whether the chunk is a partial view of a
// guideline (by_parts mode) rather than the unified rendering.
func (t ChunkType) IsGuidelinePart() bool {
	switch t {
	case ChunkTypeMain, ChunkTypeCriterion, ChunkTypeBenefit,
		ChunkTypeGRI, ChunkTypeExample, ChunkTypeResource:
		return true
	}
	return false
}

// ChunkMeta carries the fields every indexed chunk must resolve back to.
// Required fields are enforced at construction instead of looked up
// optimistically at read time.
type ChunkMeta struct {
	FullID       types.FullID
	CategoryName string
	Title        string
	URL          string

	// Optional, per chunk type
	BenefitCategory string
	CriterionTitle  string
}

// Chunk is the atomic indexing unit produced by the chunkers. Chunks are
// write-once and consumed only by the vector index at load time.
type Chunk struct {
	Text string
	Type ChunkType
	Meta ChunkMeta

	// EmbedText, when non-empty, is embedded in place of Text. The
	// unified chunker sets it to the repetition-weighted rendering
	// while Text stays the readable content returned to callers.
	EmbedText string
}

// EmbeddableText returns the text the vector index should embed.
func (c *Chunk) EmbeddableText() string {
	if c.EmbedText != "" {
		return c.EmbedText
	}
	return c.Text
}

// NewGuidelineChunk builds a chunk owned by a guideline and validates
// the required metadata.
func NewGuidelineChunk(text string, chunkType ChunkType, meta ChunkMeta) (Chunk, error) {
	if err := meta.FullID.Validate(); err != nil {
		return Chunk{}, goerr.Wrap(err, "chunk requires owning guideline full ID")
	}
	if meta.Title == "" {
		return Chunk{}, goerr.New("chunk requires guideline title", goerr.V("full_id", meta.FullID))
	}
	return Chunk{Text: text, Type: chunkType, Meta: meta}, nil
}

// ContentChunk is a chunk cut from a target document (website HTML or a
// code snippet). It carries no guideline metadata.
type ContentChunk struct {
	Text string
	Type ChunkType
}
