package model

// StructureStats summarizes a target HTML document's structure. It is
// the embedding-free relevance signal: tag counts are converted into
// guideline tags by the relevance service.
type StructureStats struct {
	// Tag counts
	TotalTags    int `json:"total_tags"`
	TotalImages  int `json:"total_images"`
	TotalLinks   int `json:"total_links"`
	TotalForms   int `json:"total_forms"`
	TotalScripts int `json:"total_scripts"`
	TotalStyles  int `json:"total_styles"`
	TotalIframes int `json:"total_iframes"`

	// Semantic tag presence counts, keyed by tag name
	SemanticTags map[string]int `json:"semantic_tags"`

	// Accessibility counts
	ImagesWithAlt   int `json:"images_with_alt"`
	InputsWithLabel int `json:"inputs_with_label"`
	LinksWithText   int `json:"links_with_text"`

	// Performance counts
	ExternalScripts int `json:"external_scripts"`
	ExternalStyles  int `json:"external_styles"`
	InlineScripts   int `json:"inline_scripts"`
	InlineStyles    int `json:"inline_styles"`
	LazyImages      int `json:"lazy_images"`
}

// GuidelineCandidate is a structurally relevant guideline with its
// weight and the tags that matched. Candidates are the structural-path
// counterpart of RelevanceHit.
type GuidelineCandidate struct {
	FullID       string   `json:"guideline_id"`
	Title        string   `json:"title"`
	CategoryName string   `json:"category_name"`
	URL          string   `json:"url"`
	Impact       string   `json:"impact"`
	Effort       string   `json:"effort"`
	Weight       float64  `json:"weight"`
	MatchedTags  []string `json:"matched_tags"`
}
