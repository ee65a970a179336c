package embedding

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/logging"
)

var ErrEmbeddingProvider = goerr.New("embedding provider request failed")

// RetryPolicy controls retries against the embedding provider. Delays
// grow exponentially from BaseDelay and are capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries transient provider failures a few times
// before giving up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Client embeds text via a gollem LLM client with retries.
type Client struct {
	llm       gollem.LLMClient
	dimension int
	batchSize int
	retry     RetryPolicy
}

var _ interfaces.EmbeddingClient = (*Client)(nil)

type Option func(*Client)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithBatchSize limits how many texts go to the provider in one call.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// New creates an embedding client for model.EmbeddingDimension vectors.
func New(llm gollem.LLMClient, opts ...Option) *Client {
	c := &Client{
		llm:       llm,
		dimension: model.EmbeddingDimension,
		batchSize: 100,
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed embeds a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, goerr.Wrap(ErrEmbeddingProvider, "no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts, splitting into provider-sized batches.
// The result preserves input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, goerr.Wrap(ErrEmbeddingProvider, "embedding count mismatch",
				goerr.V("expected", end-start), goerr.V("actual", len(batch)))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *Client) embedWithRetry(ctx context.Context, texts []string) ([][]float64, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			logging.From(ctx).Warn("retrying embedding request",
				"attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, goerr.Wrap(ctx.Err(), "embedding canceled")
			case <-time.After(c.retry.delay(attempt - 1)):
			}
		}

		vectors, err := c.llm.GenerateEmbedding(ctx, c.dimension, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
	}
	return nil, goerr.Wrap(ErrEmbeddingProvider, "giving up after retries",
		goerr.V("attempts", c.retry.MaxAttempts), goerr.V("cause", lastErr))
}
