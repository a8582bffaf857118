package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/intake-ocr/internal/store"
)

type fakeJobStore struct {
	jobs    map[int64]*store.JobRow
	pending int64
	failed  []store.JobRow
}

func (f *fakeJobStore) Get(_ context.Context, id int64) (*store.JobRow, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return job, nil
}

func (f *fakeJobStore) PendingCount(context.Context) (int64, error) {
	return f.pending, nil
}

func (f *fakeJobStore) ListFailed(_ context.Context, limit int) ([]store.JobRow, error) {
	if limit > len(f.failed) {
		limit = len(f.failed)
	}
	return f.failed[:limit], nil
}

type fakeStore struct {
	job store.Job
}

func (f *fakeStore) Document() store.Document { return nil }
func (f *fakeStore) Job() store.Job           { return f.job }
func (f *fakeStore) InitialMigration() error  { return nil }
func (f *fakeStore) Close() error             { return nil }

func newJobsRouter(jobStore store.Job) http.Handler {
	router := chi.NewRouter()
	handler := &jobsHandler{store: &fakeStore{job: jobStore}}
	handler.routes(router)
	return router
}

func TestJobsHandlerPendingCount(t *testing.T) {
	router := newJobsRouter(&fakeJobStore{pending: 3})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/pending", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body["pending"])
}

func TestJobsHandlerGet(t *testing.T) {
	now := time.Now()
	router := newJobsRouter(&fakeJobStore{jobs: map[int64]*store.JobRow{
		5: {ID: 5, State: rivertype.JobStateDiscarded, Kind: "document_batch", Attempt: 3, MaxAttempts: 3, FinalizedAt: &now},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body jobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body.ID)
	assert.Equal(t, string(rivertype.JobStateDiscarded), body.State)
	assert.Equal(t, "document_batch", body.Kind)
	assert.Equal(t, 3, body.MaxAttempts)
	require.NotNil(t, body.FinalizedAt)
}

func TestJobsHandlerGetNotFound(t *testing.T) {
	router := newJobsRouter(&fakeJobStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/42", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsHandlerGetRejectsNonNumericID(t *testing.T) {
	router := newJobsRouter(&fakeJobStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobsHandlerListFailed(t *testing.T) {
	router := newJobsRouter(&fakeJobStore{failed: []store.JobRow{
		{ID: 2, State: rivertype.JobStateDiscarded, Kind: "document_batch"},
		{ID: 1, State: rivertype.JobStateDiscarded, Kind: "document_batch"},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/failed?limit=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []jobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, int64(2), body[0].ID)
}

func TestJobsHandlerListFailedRejectsBadLimit(t *testing.T) {
	router := newJobsRouter(&fakeJobStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/failed?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
