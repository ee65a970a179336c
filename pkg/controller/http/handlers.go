package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/types"
	"github.com/Google-eCarbon/ecarbon/pkg/service/vectorindex"
	"github.com/Google-eCarbon/ecarbon/pkg/usecase"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/errutil"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/safe"
)

func respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(r.Context(), w, data)
}

func healthHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Status       string `json:"status"`
		CorpusLoaded bool   `json:"corpus_loaded"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, response{
			Status:       "ok",
			CorpusLoaded: uc.Corpus() != nil,
		})
	}
}

func evaluateHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		URL string `json:"url"`
	}
	type response struct {
		EvaluationID string `json:"evaluation_id"`
		Status       string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		eval, err := uc.StartWebsiteEvaluation(r.Context(), req.URL)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		respondJSON(w, r, http.StatusAccepted, response{
			EvaluationID: eval.ID.String(),
			Status:       eval.Status.String(),
		})
	}
}

func evaluateCodeHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Code        string `json:"code"`
		GuidelineID string `json:"guideline_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		result, err := uc.EvaluateCode(r.Context(), req.Code, types.FullID(req.GuidelineID))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		respondJSON(w, r, http.StatusOK, result)
	}
}

func getEvaluationHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.EvaluationID(chi.URLParam(r, "id"))

		eval, err := uc.GetEvaluation(r.Context(), id)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		respondJSON(w, r, http.StatusOK, eval)
	}
}

func listEvaluationsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				errutil.HandleHTTP(r.Context(), w, goerr.New("invalid limit", goerr.V("limit", raw)), http.StatusBadRequest)
				return
			}
			limit = n
		}

		evals, err := uc.ListEvaluations(r.Context(), limit)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]any{"evaluations": evals})
	}
}

func searchHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		k := 0
		if raw := r.URL.Query().Get("k"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				errutil.HandleHTTP(r.Context(), w, goerr.New("invalid k", goerr.V("k", raw)), http.StatusBadRequest)
				return
			}
			k = n
		}

		results, err := uc.SearchGuidelines(r.Context(), query, k)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]any{"results": results})
	}
}

// statusFor maps use case errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEvaluationNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrEmptyQuery),
		errors.Is(err, usecase.ErrEmptyTarget):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrCorpusNotLoaded),
		errors.Is(err, usecase.ErrFetcherNotSet),
		errors.Is(err, usecase.ErrVerdictNotSet),
		errors.Is(err, vectorindex.ErrIndexNotReady):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
