package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
)

// Memory is an in-memory evaluation store for development and tests.
type Memory struct {
	mu    sync.RWMutex
	evals map[types.EvaluationID]*model.Evaluation
}

var _ interfaces.EvaluationRepository = &Memory{}

func New() *Memory {
	return &Memory{
		evals: make(map[types.EvaluationID]*model.Evaluation),
	}
}

// copyEvaluation creates a deep copy of an evaluation record
func copyEvaluation(e *model.Evaluation) *model.Evaluation {
	copied := &model.Evaluation{
		ID:        e.ID,
		URL:       e.URL,
		Status:    e.Status,
		Error:     e.Error,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}

	if e.Result != nil {
		result := *e.Result
		if e.Result.Structure != nil {
			structure := *e.Result.Structure
			if e.Result.Structure.SemanticTags != nil {
				structure.SemanticTags = make(map[string]int, len(e.Result.Structure.SemanticTags))
				for k, v := range e.Result.Structure.SemanticTags {
					structure.SemanticTags[k] = v
				}
			}
			result.Structure = &structure
		}
		if e.Result.Guidelines != nil {
			result.Guidelines = make([]model.GuidelineEvaluation, len(e.Result.Guidelines))
			copy(result.Guidelines, e.Result.Guidelines)
			for i := range result.Guidelines {
				if src := e.Result.Guidelines[i].Violations; src != nil {
					result.Guidelines[i].Violations = make([]model.Verdict, len(src))
					copy(result.Guidelines[i].Violations, src)
				}
			}
		}
		copied.Result = &result
	}

	return copied
}

func (r *Memory) Put(ctx context.Context, eval *model.Evaluation) error {
	if err := eval.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid evaluation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := copyEvaluation(eval)
	saved.UpdatedAt = time.Now().UTC()
	r.evals[saved.ID] = saved
	return nil
}

func (r *Memory) Get(ctx context.Context, id types.EvaluationID) (*model.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eval, exists := r.evals[id]
	if !exists {
		return nil, nil
	}
	return copyEvaluation(eval), nil
}

func (r *Memory) List(ctx context.Context, limit int) ([]*model.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Evaluation, 0, len(r.evals))
	for _, e := range r.evals {
		result = append(result, copyEvaluation(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *Memory) UpdateStatus(ctx context.Context, id types.EvaluationID, status types.EvaluationStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	eval, exists := r.evals[id]
	if !exists {
		return goerr.New("evaluation not found", goerr.V("id", id))
	}
	if !eval.Status.CanTransitionTo(status) {
		return goerr.New("illegal status transition",
			goerr.V("id", id), goerr.V("from", eval.Status), goerr.V("to", status))
	}

	eval.Status = status
	eval.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Memory) Close() error {
	return nil
}
