package model

// SearchHit is a raw chunk-level nearest-neighbor result returned by the
// vector index. Distance follows the smaller-is-closer convention.
type SearchHit struct {
	ChunkID  string
	Distance float64
	Text     string
	Type     ChunkType
	Meta     ChunkMeta
}

// RelatedChunk records a part-mode chunk that matched alongside the
// seeding hit of the same guideline.
type RelatedChunk struct {
	Type    ChunkType `json:"type"`
	Content string    `json:"content"`
	Score   float64   `json:"score"`
}

// RelevanceHit is one guideline's merged query result: the best distance
// seen for the guideline plus every matching part chunk as evidence.
// Score keeps the distance convention (lower is more similar); the
// caller-facing similarity conversion happens once, at the API boundary.
type RelevanceHit struct {
	FullID        string         `json:"guideline_id"`
	Title         string         `json:"title"`
	CategoryName  string         `json:"category_name"`
	URL           string         `json:"url"`
	Score         float64        `json:"score"`
	Content       string         `json:"content"`
	RelatedChunks []RelatedChunk `json:"related_chunks"`
}

// Similarity converts a bounded [0,1] distance into the caller-facing
// similarity score where 1.0 means identical.
func Similarity(distance float64) float64 {
	s := 1.0 - distance
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
