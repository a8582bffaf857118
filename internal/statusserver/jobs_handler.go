package statusserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clinicore/intake-ocr/internal/store"
)

const defaultFailedJobsLimit = 20

// jobsHandler exposes read-only queue visibility for operators: pending
// backlog, recent failures, and individual job lookup.
type jobsHandler struct {
	store store.Store
}

type jobResponse struct {
	ID          int64      `json:"id"`
	State       string     `json:"state"`
	Kind        string     `json:"kind"`
	Attempt     int        `json:"attempt"`
	MaxAttempts int        `json:"max_attempts"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

func newJobResponse(row *store.JobRow) jobResponse {
	return jobResponse{
		ID:          row.ID,
		State:       string(row.State),
		Kind:        row.Kind,
		Attempt:     row.Attempt,
		MaxAttempts: row.MaxAttempts,
		FinalizedAt: row.FinalizedAt,
	}
}

func (h *jobsHandler) routes(router chi.Router) {
	router.Get("/api/v1/jobs/pending", h.pendingCount)
	router.Get("/api/v1/jobs/failed", h.listFailed)
	router.Get("/api/v1/jobs/{id}", h.get)
}

func (h *jobsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.store.Job().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, newJobResponse(job))
}

func (h *jobsHandler) pendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Job().PendingCount(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]int64{"pending": count})
}

func (h *jobsHandler) listFailed(w http.ResponseWriter, r *http.Request) {
	limit := defaultFailedJobsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	rows, err := h.store.Job().ListFailed(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]jobResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, newJobResponse(&rows[i]))
	}
	writeJSON(w, responses)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Named("status_server").Errorw("encoding response", "error", err)
	}
}
