package interfaces

import (
	"context"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// VerdictClient judges whether a content chunk violates a guideline.
type VerdictClient interface {
	// Judge evaluates the chunk text against the guideline and returns
	// a structured verdict.
	Judge(ctx context.Context, guideline *model.Guideline, chunk string) (*model.Verdict, error)
}
