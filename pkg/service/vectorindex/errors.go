package vectorindex

import "github.com/m-mizutani/goerr/v2"

var (
	ErrIndexNotReady     = goerr.New("vector index has not been built yet")
	ErrDimensionMismatch = goerr.New("vector dimension mismatch")
)
