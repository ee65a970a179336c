package interfaces

import (
	"context"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// VectorIndex is a nearest-neighbor index over guideline chunks.
// Rebuild atomically replaces the whole index; queries against the
// previous generation remain valid until the swap completes.
type VectorIndex interface {
	// Rebuild replaces the index contents with the given chunks and
	// their vectors. len(chunks) must equal len(vectors).
	Rebuild(ctx context.Context, chunks []*model.Chunk, vectors [][]float64) error

	// Query returns the k nearest chunks to the query vector, closest
	// first. Querying before the first Rebuild is an error; querying a
	// rebuilt-but-empty index returns an empty slice.
	Query(ctx context.Context, vector []float64, k int) ([]*model.SearchHit, error)

	// Ready reports whether at least one Rebuild has completed.
	Ready() bool

	// Size returns the number of indexed chunks.
	Size() int
}
