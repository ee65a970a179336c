package usecase

import (
	"sync"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/service/chunker"
)

// UseCases wires the retrieval pipeline: corpus loading, guideline
// search, and website/code evaluation.
type UseCases struct {
	embedder interfaces.EmbeddingClient
	index    interfaces.VectorIndex
	repo     interfaces.EvaluationRepository
	fetcher  interfaces.Fetcher
	verdict  interfaces.VerdictClient

	htmlChunker *chunker.HTMLChunker
	chunkMode   chunker.Mode
	topK        int

	// corpus is replaced wholesale by ReloadCorpus
	corpusMu sync.RWMutex
	corpus   *model.GuidelineDocument
}

type Option func(*UseCases)

// WithFetcher sets the page fetcher used by website evaluation.
func WithFetcher(f interfaces.Fetcher) Option {
	return func(uc *UseCases) {
		uc.fetcher = f
	}
}

// WithVerdictClient sets the LLM verdict client used by evaluation.
func WithVerdictClient(v interfaces.VerdictClient) Option {
	return func(uc *UseCases) {
		uc.verdict = v
	}
}

// WithChunkMode selects the guideline chunking strategy.
func WithChunkMode(mode chunker.Mode) Option {
	return func(uc *UseCases) {
		uc.chunkMode = mode
	}
}

// WithTopK sets the default result count for search and evaluation.
func WithTopK(k int) Option {
	return func(uc *UseCases) {
		if k > 0 {
			uc.topK = k
		}
	}
}

// WithHTMLChunker overrides the target-document chunker.
func WithHTMLChunker(c *chunker.HTMLChunker) Option {
	return func(uc *UseCases) {
		uc.htmlChunker = c
	}
}

func New(embedder interfaces.EmbeddingClient, index interfaces.VectorIndex, repo interfaces.EvaluationRepository, opts ...Option) *UseCases {
	uc := &UseCases{
		embedder:    embedder,
		index:       index,
		repo:        repo,
		htmlChunker: chunker.NewHTMLChunker(),
		chunkMode:   chunker.ModeByParts,
		topK:        5,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Corpus returns the currently loaded guideline document, or nil before
// the first ReloadCorpus.
func (uc *UseCases) Corpus() *model.GuidelineDocument {
	uc.corpusMu.RLock()
	defer uc.corpusMu.RUnlock()
	return uc.corpus
}
