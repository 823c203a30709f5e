// Package api exposes the scoring engine over HTTP and MCP. Both surfaces
// are thin: they validate and decode, call the engine, and encode. All
// scoring semantics live in the engine.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Alexsovich5/DAPP-sub000/internal/engine"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
	"github.com/Alexsovich5/DAPP-sub000/internal/storage"
)

const maxRequestBodySize = 10 << 20 // 10MB; batch requests carry many profiles

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

type AppDeps struct {
	Engine *engine.Engine
	Store  *storage.Store
	Token  string
	Logger *slog.Logger
}

// NewAppHandler returns the HTTP API. /health is open; everything else
// requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/score", handleScore(deps))
		r.Post("/match", handleMatch(deps))
		r.Post("/corpus/train", handleTrain(deps))
		r.Get("/results/{id}", handleGetResult(deps))
		r.Get("/results", handleListResults(deps))
		r.Delete("/embeddings/{userID}", handleDeleteEmbeddings(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type ScoreRequest struct {
	UserA *profile.UserProfile `json:"user_a"`
	UserB *profile.UserProfile `json:"user_b"`
}

func handleScore(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := req.UserA.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_a: %v", err)
			return
		}
		if err := req.UserB.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_b: %v", err)
			return
		}

		result := deps.Engine.Score(r.Context(), req.UserA, req.UserB)
		if deps.Store != nil && !result.Degraded() {
			if err := deps.Store.SaveResult(result); err != nil {
				deps.Logger.Warn("persisting result failed", "result", result.ID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type MatchRequest struct {
	Target     *profile.UserProfile   `json:"target"`
	Candidates []*profile.UserProfile `json:"candidates"`
}

func handleMatch(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := req.Target.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "target: %v", err)
			return
		}
		if len(req.Candidates) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "at least one candidate is required")
			return
		}

		batch, err := deps.Engine.ScoreBatch(r.Context(), req.Target, req.Candidates)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "batch scoring failed: %v", err)
			return
		}
		if deps.Store != nil {
			for _, result := range batch.Results {
				if err := deps.Store.SaveResult(result); err != nil {
					deps.Logger.Warn("persisting result failed", "result", result.ID, "error", err)
				}
			}
		}

		writeJSON(w, http.StatusOK, batch)
	}
}

type TrainRequest struct {
	Profiles []*profile.UserProfile `json:"profiles"`
}

type TrainResponse struct {
	Trained      bool `json:"trained"`
	ProfileCount int  `json:"profile_count"`
}

func handleTrain(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req TrainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Profiles) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "at least one profile is required")
			return
		}

		deps.Engine.Train(r.Context(), req.Profiles)

		writeJSON(w, http.StatusOK, TrainResponse{
			Trained:      deps.Engine.Corpus().Trained(),
			ProfileCount: len(req.Profiles),
		})
	}
}

func handleGetResult(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := deps.Store.GetResult(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "result not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get result: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleListResults(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		if userID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user query parameter is required")
			return
		}

		limit := defaultResultsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a positive integer")
				return
			}
			limit = n
		}
		if limit > maxResultsLimit {
			limit = maxResultsLimit
		}

		results, err := deps.Store.RecentResults(userID, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list results: %v", err)
			return
		}
		if results == nil {
			results = []engine.Result{}
		}

		writeJSON(w, http.StatusOK, results)
	}
}

func handleDeleteEmbeddings(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		if err := deps.Store.DeleteEmbeddings(userID); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete embeddings: %v", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
