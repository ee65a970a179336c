package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/Google-eCarbon/ecarbon/pkg/controller/http"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/repository/memory"
	"github.com/Google-eCarbon/ecarbon/pkg/service/vectorindex"
	"github.com/Google-eCarbon/ecarbon/pkg/usecase"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0, 0}
	}
	return out, nil
}

type stubFetcher struct{ body string }

func (f stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.body, nil
}

type stubVerdict struct{}

func (stubVerdict) Judge(ctx context.Context, g *model.Guideline, chunk string) (*model.Verdict, error) {
	return &model.Verdict{Violation: false, Explanation: "looks fine"}, nil
}

func testCorpus() *model.GuidelineDocument {
	return &model.GuidelineDocument{
		Categories: []model.Category{
			{
				ID:   "2",
				Name: "User Experience Design",
				Guidelines: []model.Guideline{
					{
						ID: "1", Title: "Compress Your Images",
						Intent: "Smaller images cost less to transfer.",
						Impact: types.ImpactHigh, Effort: types.EffortLow,
						Tags: []string{"Image", "UI"},
					},
				},
			},
		},
	}
}

func newTestServer(t *testing.T, loadCorpus bool) *httpctrl.Server {
	t.Helper()

	uc := usecase.New(stubEmbedder{}, vectorindex.New(3), memory.New(),
		usecase.WithFetcher(stubFetcher{body: "<html><body><main><p>hi</p></main></body></html>"}),
		usecase.WithVerdictClient(stubVerdict{}),
	)
	if loadCorpus {
		gt.NoError(t, uc.ReloadCorpus(context.Background(), testCorpus())).Required()
	}
	return httpctrl.New(uc)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["status"]).Equal("ok")
	gt.Value(t, body["corpus_loaded"]).Equal(false)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guidelines/search?q=image+compression", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var body struct {
		Results []struct {
			Guideline struct {
				GuidelineID string `json:"guideline_id"`
				Title       string `json:"title"`
			} `json:"guideline"`
			Similarity float64 `json:"similarity"`
		} `json:"results"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Array(t, body.Results).Length(1).Required()
	gt.Value(t, body.Results[0].Guideline.GuidelineID).Equal("2-1")
	gt.Value(t, body.Results[0].Similarity).Equal(1.0)
}

func TestSearchEndpointValidation(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guidelines/search", nil))
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guidelines/search?q=x&k=bogus", nil))
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestSearchBeforeCorpusLoad(t *testing.T) {
	srv := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guidelines/search?q=anything", nil))
	gt.Value(t, rec.Code).Equal(http.StatusServiceUnavailable)
}

func TestEvaluateFlow(t *testing.T) {
	srv := newTestServer(t, true)

	payload := bytes.NewBufferString(`{"url": "https://target.example.com"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluate", payload))

	gt.Value(t, rec.Code).Equal(http.StatusAccepted)

	var accepted struct {
		EvaluationID string `json:"evaluation_id"`
		Status       string `json:"status"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted)).Required()
	gt.Value(t, accepted.Status).Equal("pending")
	gt.Value(t, accepted.EvaluationID).NotEqual("")

	// Poll until the background run finishes
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluations/"+accepted.EvaluationID, nil))
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var eval struct {
			Status string `json:"status"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval)).Required()
		if eval.Status == "completed" || eval.Status == "failed" {
			gt.Value(t, eval.Status).Equal("completed")
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("evaluation did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEvaluateRejectsEmptyURL(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewBufferString(`{}`)))
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestGetEvaluationNotFound(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluations/"+types.NewEvaluationID().String(), nil))
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestEvaluateCodeEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	payload := bytes.NewBufferString(`{"code": "<img src=\"a.png\">", "guideline_id": "2-1"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/evaluate/code", payload))

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var result struct {
		GuidelineID string  `json:"guideline_id"`
		Score       float64 `json:"score"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result)).Required()
	gt.Value(t, result.GuidelineID).Equal("2-1")
	gt.Value(t, result.Score).Equal(1.0)
}
