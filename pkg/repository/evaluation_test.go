package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/repository/firestore"
	"github.com/Google-eCarbon/ecarbon/pkg/repository/memory"
)

func runEvaluationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.EvaluationRepository) {
	t.Helper()

	t.Run("Put and Get round-trips a record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eval := model.NewEvaluation("https://example.com")
		gt.NoError(t, repo.Put(ctx, eval)).Required()

		got, err := repo.Get(ctx, eval.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil().Required()
		gt.Value(t, got.ID).Equal(eval.ID)
		gt.Value(t, got.URL).Equal("https://example.com")
		gt.Value(t, got.Status).Equal(types.EvaluationPending)
	})

	t.Run("Get unknown ID returns nil without error", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.Get(context.Background(), types.NewEvaluationID())
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Put preserves completed result", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eval := model.NewEvaluation("https://example.com")
		eval.Status = types.EvaluationCompleted
		eval.Result = &model.EvaluationResult{
			URL:             eval.URL,
			ComplianceScore: 87.5,
			Structure: &model.StructureStats{
				TotalImages:   4,
				ImagesWithAlt: 3,
				SemanticTags:  map[string]int{"main": 1},
			},
			Guidelines: []model.GuidelineEvaluation{
				{
					FullID: "2-11",
					Title:  "Take Advantage Of Progressive Loading",
					Impact: types.ImpactMedium,
					Effort: types.EffortLow,
					Score:  0.5,
					Violations: []model.Verdict{
						{Violation: true, Explanation: "Images are not lazy loaded"},
					},
				},
			},
		}
		gt.NoError(t, repo.Put(ctx, eval)).Required()

		got, err := repo.Get(ctx, eval.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Result).NotNil().Required()
		gt.Value(t, got.Result.ComplianceScore).Equal(87.5)
		gt.Value(t, got.Result.Structure.TotalImages).Equal(4)
		gt.Array(t, got.Result.Guidelines).Length(1)
		gt.Array(t, got.Result.Guidelines[0].Violations).Length(1)
	})

	t.Run("UpdateStatus follows the lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eval := model.NewEvaluation("https://example.com")
		gt.NoError(t, repo.Put(ctx, eval)).Required()

		gt.NoError(t, repo.UpdateStatus(ctx, eval.ID, types.EvaluationRunning))
		gt.NoError(t, repo.UpdateStatus(ctx, eval.ID, types.EvaluationCompleted))

		got, err := repo.Get(ctx, eval.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.EvaluationCompleted)
	})

	t.Run("UpdateStatus rejects illegal transitions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eval := model.NewEvaluation("https://example.com")
		gt.NoError(t, repo.Put(ctx, eval)).Required()

		// pending cannot jump straight to completed
		gt.Error(t, repo.UpdateStatus(ctx, eval.ID, types.EvaluationCompleted))

		gt.NoError(t, repo.UpdateStatus(ctx, eval.ID, types.EvaluationFailed))
		// failed is terminal
		gt.Error(t, repo.UpdateStatus(ctx, eval.ID, types.EvaluationRunning))
	})

	t.Run("UpdateStatus of unknown ID fails", func(t *testing.T) {
		repo := newRepo(t)
		gt.Error(t, repo.UpdateStatus(context.Background(), types.NewEvaluationID(), types.EvaluationRunning))
	})
}

func TestMemoryEvaluationRepository(t *testing.T) {
	runEvaluationRepositoryTest(t, func(t *testing.T) interfaces.EvaluationRepository {
		return memory.New()
	})
}

func TestMemoryListOrder(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	first := model.NewEvaluation("https://example.com/1")
	second := model.NewEvaluation("https://example.com/2")
	second.CreatedAt = first.CreatedAt.Add(1)
	gt.NoError(t, repo.Put(ctx, first)).Required()
	gt.NoError(t, repo.Put(ctx, second)).Required()

	list, err := repo.List(ctx, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(2)
	gt.Value(t, list[0].ID).Equal(second.ID)

	list, err = repo.List(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(1)
}

func TestFirestoreEvaluationRepository(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	runEvaluationRepositoryTest(t, func(t *testing.T) interfaces.EvaluationRepository {
		repo, err := firestore.New(context.Background(), projectID, databaseID)
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			if err := repo.Close(); err != nil {
				t.Logf("failed to close repository: %v", err)
			}
		})
		return repo
	})
}
