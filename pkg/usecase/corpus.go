package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/service/chunker"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/logging"
)

// ReloadCorpus validates the document, chunks every guideline, embeds
// all chunks, and rebuilds the vector index in one atomic swap. Queries
// keep hitting the previous index until the swap; a failure at any step
// leaves the old corpus and index untouched.
func (uc *UseCases) ReloadCorpus(ctx context.Context, doc *model.GuidelineDocument) error {
	if err := doc.Validate(); err != nil {
		return goerr.Wrap(err, "corpus rejected")
	}

	chunks, err := chunker.ChunkDocument(doc, uc.chunkMode)
	if err != nil {
		return goerr.Wrap(err, "failed to chunk corpus")
	}

	// Every chunk must resolve back to a corpus guideline. A dangling
	// reference fails the whole rebuild instead of being dropped.
	known := make(map[types.FullID]bool)
	for _, id := range doc.FullIDs() {
		known[id] = true
	}
	for _, c := range chunks {
		if !known[c.Meta.FullID] {
			return goerr.New("chunk references unknown guideline",
				goerr.V("full_id", c.Meta.FullID), goerr.V("type", c.Type))
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.EmbeddableText()
	}

	vectors, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return goerr.Wrap(err, "failed to embed corpus chunks")
	}

	if err := uc.index.Rebuild(ctx, chunks, vectors); err != nil {
		return goerr.Wrap(err, "failed to rebuild vector index")
	}

	uc.corpusMu.Lock()
	uc.corpus = doc
	uc.corpusMu.Unlock()

	logging.From(ctx).Info("corpus reloaded",
		"guidelines", len(doc.FullIDs()),
		"chunks", len(chunks),
		"mode", uc.chunkMode,
	)
	return nil
}
