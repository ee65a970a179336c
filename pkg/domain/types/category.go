package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// CategoryID identifies a guideline category within the corpus document.
type CategoryID string

// Validate checks if the CategoryID is valid
func (c CategoryID) Validate() error {
	if c == "" {
		return goerr.New("category ID cannot be empty")
	}
	return nil
}

// String returns the string representation of CategoryID
func (c CategoryID) String() string {
	return string(c)
}

// GuidelineID identifies a guideline within its category.
type GuidelineID string

// Validate checks if the GuidelineID is valid
func (g GuidelineID) Validate() error {
	if g == "" {
		return goerr.New("guideline ID cannot be empty")
	}
	return nil
}

// String returns the string representation of GuidelineID
func (g GuidelineID) String() string {
	return string(g)
}

// FullID is the composite guideline key "{category_id}-{guideline_id}",
// globally unique across the corpus. It is the aggregation key used by
// the whole retrieval pipeline.
type FullID string

// NewFullID composes a FullID from its category and guideline parts.
func NewFullID(c CategoryID, g GuidelineID) FullID {
	return FullID(string(c) + "-" + string(g))
}

// Validate checks if the FullID is valid
func (f FullID) Validate() error {
	if f == "" {
		return goerr.New("full ID cannot be empty")
	}
	return nil
}

// String returns the string representation of FullID
func (f FullID) String() string {
	return string(f)
}
