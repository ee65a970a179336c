package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrCorpusNotLoaded    = errors.New("guideline corpus is not loaded")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrFetcherNotSet      = errors.New("fetcher is not configured")
	ErrVerdictNotSet      = errors.New("verdict client is not configured")
	ErrEmptyQuery         = errors.New("search query is empty")
	ErrEmptyTarget        = errors.New("evaluation target is empty")
)
