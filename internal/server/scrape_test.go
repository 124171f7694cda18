package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"listing-tracker/constants"
	"listing-tracker/internal/batch"
	"listing-tracker/internal/common"
	"listing-tracker/internal/entity"
	"listing-tracker/internal/pipeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSingleRunner struct {
	listing *entity.Listing
	err     error
}

func (f *fakeSingleRunner) Run(_ context.Context, url string, _ pipeline.StageFunc) (*entity.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	l := *f.listing
	l.URL = url
	return &l, nil
}

type fakeBatchRunner struct {
	result *batch.Result
	err    error
	got    []string
}

func (f *fakeBatchRunner) Run(_ context.Context, urls []string) (*batch.Result, error) {
	f.got = urls
	return f.result, f.err
}

type fakeBatchStatusRepo struct {
	byID map[uuid.UUID]*entity.BatchProgress
}

func (f *fakeBatchStatusRepo) Create(context.Context, *entity.BatchProgress) error { return nil }

func (f *fakeBatchStatusRepo) Put(context.Context, *entity.BatchProgress) error { return nil }

func (f *fakeBatchStatusRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.BatchProgress, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, common.ErrNotFound
}

func testRouter(single SingleRunner, batches BatchRunner, status *fakeBatchStatusRepo) *gin.Engine {
	if status == nil {
		status = &fakeBatchStatusRepo{}
	}
	log := zap.NewNop().Sugar()
	return NewRouter(RouterConfig{
		ScrapeHandler:  NewScrapeHandler(single, batches, status, log),
		ListingHandler: NewListingHandler(&fakeListingRepo{}, &fakeExporter{}, log),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScrape_OK(t *testing.T) {
	single := &fakeSingleRunner{listing: &entity.Listing{ID: uuid.New(), DisplayID: "REF-AB12C"}}
	r := testRouter(single, &fakeBatchRunner{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/a"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Listing entity.Listing `json:"listing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REF-AB12C", resp.Listing.DisplayID)
	assert.Equal(t, "https://example.com/a", resp.Listing.URL)
}

func TestScrape_MissingURL(t *testing.T) {
	r := testRouter(&fakeSingleRunner{}, &fakeBatchRunner{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/scrape", gin.H{"url": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrape_UnusablePage(t *testing.T) {
	single := &fakeSingleRunner{err: common.ErrExtractionExhausted}
	r := testRouter(single, &fakeBatchRunner{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/empty"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestScrapeBatch_OK(t *testing.T) {
	batches := &fakeBatchRunner{result: &batch.Result{
		BatchID:   uuid.New(),
		Total:     2,
		Processed: 1,
		Failed:    1,
		Items: []batch.ItemResult{
			{Index: 0, URL: "https://example.com/a", OK: true, DisplayID: "REF-XY9Z0"},
			{Index: 1, URL: "https://example.com/b", Error: "fetch failure"},
		},
	}}
	r := testRouter(&fakeSingleRunner{}, batches, nil)

	w := doJSON(t, r, http.MethodPost, "/api/scrape-batch", gin.H{
		"urls": []string{"https://example.com/a", "https://example.com/b"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, batches.got)

	var res batch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed)
}

func TestScrapeBatch_EmptyList(t *testing.T) {
	batches := &fakeBatchRunner{err: common.ErrValidation}
	r := testRouter(&fakeSingleRunner{}, batches, nil)

	w := doJSON(t, r, http.MethodPost, "/api/scrape-batch", gin.H{"urls": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBatch(t *testing.T) {
	prog := entity.NewBatchProgress([]string{"https://example.com/a"}, 0)
	prog.Items[0].Status = constants.ItemStatusSuccess
	prog.Recount()
	status := &fakeBatchStatusRepo{byID: map[uuid.UUID]*entity.BatchProgress{prog.ID: prog}}
	r := testRouter(&fakeSingleRunner{}, &fakeBatchRunner{}, status)

	w := doJSON(t, r, http.MethodGet, "/api/batches/"+prog.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got entity.BatchProgress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, prog.ID, got.ID)
	assert.Equal(t, 1, got.Completed)

	w = doJSON(t, r, http.MethodGet, "/api/batches/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/batches/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
