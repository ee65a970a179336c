package model

import (
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// GuidelineDocument is the root of the guideline corpus. It is immutable
// once loaded; corpus updates replace the whole document.
type GuidelineDocument struct {
	Title        string     `json:"title"`
	Version      string     `json:"version"`
	Edition      string     `json:"edition"`
	LastModified string     `json:"lastModified"`
	Categories   []Category `json:"category"`
}

// Category groups guidelines under a corpus-unique ID.
type Category struct {
	ID         types.CategoryID `json:"id"`
	Name       string           `json:"name"`
	ShortName  string           `json:"shortName,omitempty"`
	Guidelines []Guideline      `json:"guidelines"`
}

// Guideline is a single sustainability recommendation with fielded
// metadata. The JSON field names follow the corpus file format.
type Guideline struct {
	ID        types.GuidelineID   `json:"id"`
	URL       string              `json:"url"`
	Title     string              `json:"guideline"`
	Criteria  []Criterion         `json:"criteria"`
	Intent    string              `json:"intent"`
	Impact    types.Impact        `json:"impact"`
	Effort    types.Effort        `json:"effort"`
	Benefits  []map[string]string `json:"benefits,omitempty"`
	GRI       []map[string]string `json:"GRI,omitempty"`
	Examples  []Example           `json:"example,omitempty"`
	Resources map[string]string   `json:"resources,omitempty"`
	Tags      []string            `json:"tags"`
}

// Criterion is a single success criterion of a guideline. Testable may
// embed a cross-reference ID (e.g. a Machine-testable star test link).
type Criterion struct {
	Title       string `json:"title"`
	Testable    string `json:"testable"`
	Description string `json:"description"`
}

// Example holds an illustrative snippet attached to a guideline.
type Example struct {
	Code    string `json:"code,omitempty"`
	Content string `json:"content"`
}

// Validate checks structural integrity of the loaded document: non-empty
// IDs, valid enum levels, and corpus-unique full IDs.
func (d *GuidelineDocument) Validate() error {
	seen := make(map[types.FullID]bool)
	catIDs := make(map[types.CategoryID]bool)
	for _, cat := range d.Categories {
		if err := cat.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category", goerr.V("name", cat.Name))
		}
		if catIDs[cat.ID] {
			return goerr.New("duplicate category ID", goerr.V("id", cat.ID))
		}
		catIDs[cat.ID] = true

		for _, g := range cat.Guidelines {
			if err := g.Validate(); err != nil {
				return goerr.Wrap(err, "invalid guideline", goerr.V("category", cat.ID))
			}
			fullID := types.NewFullID(cat.ID, g.ID)
			if seen[fullID] {
				return goerr.New("duplicate guideline full ID", goerr.V("full_id", fullID))
			}
			seen[fullID] = true
		}
	}
	return nil
}

// Validate checks the guideline's required fields and enum levels.
func (g *Guideline) Validate() error {
	if err := g.ID.Validate(); err != nil {
		return err
	}
	if g.Title == "" {
		return goerr.New("guideline title is required", goerr.V("id", g.ID))
	}
	if err := g.Impact.Validate(); err != nil {
		return goerr.Wrap(err, "guideline impact", goerr.V("id", g.ID))
	}
	if err := g.Effort.Validate(); err != nil {
		return goerr.Wrap(err, "guideline effort", goerr.V("id", g.ID))
	}
	return nil
}

// Find returns the guideline with the given full ID, or nil.
func (d *GuidelineDocument) Find(id types.FullID) *Guideline {
	for ci := range d.Categories {
		cat := &d.Categories[ci]
		for gi := range cat.Guidelines {
			g := &cat.Guidelines[gi]
			if types.NewFullID(cat.ID, g.ID) == id {
				return g
			}
		}
	}
	return nil
}

// FullIDs returns the set of all guideline full IDs in document order.
func (d *GuidelineDocument) FullIDs() []types.FullID {
	var ids []types.FullID
	for _, cat := range d.Categories {
		for _, g := range cat.Guidelines {
			ids = append(ids, types.NewFullID(cat.ID, g.ID))
		}
	}
	return ids
}

// HasTag reports whether the guideline carries the given tag.
func (g *Guideline) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EmbeddingText renders the guideline as a single embeddable string with
// field-level repetition weighting: title+intent twice, then each
// criterion, each tag, and each example once. The output is
// deterministic and order-stable so that identical guideline content
// always normalizes to byte-identical text.
func (g *Guideline) EmbeddingText() string {
	var parts []string

	core := g.Title + " " + g.Intent
	parts = append(parts, core, core)

	for _, c := range g.Criteria {
		parts = append(parts, c.Title+": "+c.Description)
	}
	for _, t := range g.Tags {
		parts = append(parts, "Tag: "+t)
	}
	for _, ex := range g.Examples {
		parts = append(parts, ex.Content)
	}

	return strings.Join(parts, " ")
}

// BenefitEntries flattens the sparse benefit maps into (category, text)
// pairs with a stable order: source list order, then key order within
// each map.
func (g *Guideline) BenefitEntries() [][2]string {
	var entries [][2]string
	for _, m := range g.Benefits {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if m[k] == "" {
				continue
			}
			entries = append(entries, [2]string{k, m[k]})
		}
	}
	return entries
}

// GRIEntries flattens the GRI metric maps into (metric, level) pairs
// with the same stable ordering as BenefitEntries.
func (g *Guideline) GRIEntries() [][2]string {
	var entries [][2]string
	for _, m := range g.GRI {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, [2]string{k, m[k]})
		}
	}
	return entries
}

// ResourceEntries returns (title, url) pairs sorted by title.
func (g *Guideline) ResourceEntries() [][2]string {
	keys := make([]string, 0, len(g.Resources))
	for k := range g.Resources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([][2]string, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, [2]string{k, g.Resources[k]})
	}
	return entries
}
