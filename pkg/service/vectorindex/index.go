package vectorindex

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

type entry struct {
	id     string
	vector []float64
	chunk  *model.Chunk
}

// generation is one immutable build of the index. Rebuild swaps the
// whole generation so in-flight queries keep reading a consistent view.
type generation struct {
	entries []entry
}

// Index is an in-memory brute-force nearest-neighbor index over
// guideline chunks. Distances are cosine distances, smaller is closer.
type Index struct {
	mu        sync.RWMutex
	dimension int
	gen       *generation
}

var _ interfaces.VectorIndex = (*Index)(nil)

// New creates an empty, not-yet-ready index for vectors of the given
// dimension.
func New(dimension int) *Index {
	return &Index{dimension: dimension}
}

// Rebuild replaces the index contents in one atomic swap. The previous
// generation stays queryable until the swap, so a failed rebuild leaves
// the index unchanged.
func (x *Index) Rebuild(ctx context.Context, chunks []*model.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return goerr.New("chunks and vectors length mismatch",
			goerr.V("chunks", len(chunks)), goerr.V("vectors", len(vectors)))
	}

	entries := make([]entry, 0, len(chunks))
	for i, v := range vectors {
		if len(v) != x.dimension {
			return goerr.Wrap(ErrDimensionMismatch, "rejecting rebuild",
				goerr.V("expected", x.dimension), goerr.V("actual", len(v)), goerr.V("index", i))
		}
		entries = append(entries, entry{
			id:     string(chunks[i].Meta.FullID) + ":" + string(chunks[i].Type) + ":" + strconv.Itoa(i),
			vector: normalize(v),
			chunk:  chunks[i],
		})
	}

	x.mu.Lock()
	x.gen = &generation{entries: entries}
	x.mu.Unlock()
	return nil
}

// Query returns the k nearest chunks, closest first. Ties keep insertion
// order. Querying before the first rebuild fails with ErrIndexNotReady;
// querying an empty index returns an empty result.
func (x *Index) Query(ctx context.Context, vector []float64, k int) ([]*model.SearchHit, error) {
	x.mu.RLock()
	gen := x.gen
	x.mu.RUnlock()

	if gen == nil {
		return nil, goerr.Wrap(ErrIndexNotReady, "query rejected")
	}
	if len(vector) != x.dimension {
		return nil, goerr.Wrap(ErrDimensionMismatch, "query rejected",
			goerr.V("expected", x.dimension), goerr.V("actual", len(vector)))
	}
	if k <= 0 {
		return nil, goerr.New("k must be positive", goerr.V("k", k))
	}
	if len(gen.entries) == 0 {
		return []*model.SearchHit{}, nil
	}

	q := normalize(vector)
	type scored struct {
		idx      int
		distance float64
	}
	scores := make([]scored, len(gen.entries))
	for i := range gen.entries {
		scores[i] = scored{idx: i, distance: 1.0 - dot(gen.entries[i].vector, q)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].distance < scores[j].distance
	})

	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]*model.SearchHit, 0, k)
	for _, s := range scores[:k] {
		e := gen.entries[s.idx]
		hits = append(hits, &model.SearchHit{
			ChunkID:  e.id,
			Distance: s.distance,
			Text:     e.chunk.Text,
			Type:     e.chunk.Type,
			Meta:     e.chunk.Meta,
		})
	}
	return hits, nil
}

// Ready reports whether at least one Rebuild has completed.
func (x *Index) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.gen != nil
}

// Size returns the number of indexed chunks.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.gen == nil {
		return 0
	}
	return len(x.gen.entries)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize returns the L2-normalized copy of v. A zero vector is
// returned as-is so that its distance to everything is 1.
func normalize(v []float64) []float64 {
	var norm float64
	for _, f := range v {
		norm += f * f
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = f / norm
	}
	return out
}
