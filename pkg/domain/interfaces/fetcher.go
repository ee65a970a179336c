package interfaces

import (
	"context"
)

// Fetcher retrieves the HTML content of a target URL.
type Fetcher interface {
	// Fetch downloads the document at the given URL and returns its
	// body as decoded text.
	Fetch(ctx context.Context, url string) (string, error)
}
