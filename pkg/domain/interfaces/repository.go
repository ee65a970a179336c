package interfaces

import (
	"context"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// EvaluationRepository defines the interface for evaluation task persistence
type EvaluationRepository interface {
	// Put saves an evaluation (upsert)
	Put(ctx context.Context, eval *model.Evaluation) error

	// Get retrieves an evaluation by ID. Returns nil, nil when not found.
	Get(ctx context.Context, id types.EvaluationID) (*model.Evaluation, error)

	// List retrieves evaluations ordered by CreatedAt descending
	List(ctx context.Context, limit int) ([]*model.Evaluation, error)

	// UpdateStatus transitions an evaluation's status. Illegal
	// transitions are rejected.
	UpdateStatus(ctx context.Context, id types.EvaluationID, status types.EvaluationStatus) error

	// Close releases backend resources
	Close() error
}
