package interfaces

import (
	"context"
)

// EmbeddingClient converts text into fixed-dimension embedding vectors.
// Implementations must return one vector per input text, in input order.
type EmbeddingClient interface {
	// Embed embeds a single text
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch embeds multiple texts in one call
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
