package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/marcosvillarreal/reelstack-backend/internal/assets"
	"github.com/marcosvillarreal/reelstack-backend/internal/batch"
	"github.com/marcosvillarreal/reelstack-backend/internal/imaging"
	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
)

func newBatchDispatcherForTest(t *testing.T, registry *batch.Registry) *batch.Dispatcher {
	t.Helper()
	repo := assets.NewRepository(setupControllerDB(t))
	resolver := assets.NewVersionResolver(repo, 3)
	executor, err := batch.NewExecutor(batch.ExecutorParams{
		Repo:     repo,
		Resolver: resolver,
		Storage:  newStubAssetStorage(),
		Processor: imaging.NewProcessor(config.ImagingConfig{
			MaxWidth:      1920,
			MaxHeight:     1080,
			JPEGQuality:   85,
			ThumbnailSize: 300,
		}),
	})
	if err != nil {
		t.Fatalf("build executor: %v", err)
	}
	dispatcher, err := batch.NewDispatcher(batch.DispatcherParams{
		Registry: registry,
		Executor: executor,
		Config:   config.BatchConfig{MaxConcurrency: 2, TaskTimeout: time.Second},
	})
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}
	return dispatcher
}

func TestBatchProcessUnknownOperation(t *testing.T) {
	registry := batch.NewRegistry()
	handler := BatchProcess(newBatchDispatcherForTest(t, registry), nil)
	owner := uuid.New()

	body := `{"asset_ids": ["` + uuid.NewString() + `"], "operation": "transmogrify"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/batch/process", strings.NewReader(body)), owner)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if jobs := registry.List(owner); len(jobs) != 0 {
		t.Fatalf("expected no job registered, got %d", len(jobs))
	}
}

func TestBatchProcessEmptyAssetList(t *testing.T) {
	handler := BatchProcess(newBatchDispatcherForTest(t, batch.NewRegistry()), nil)

	body := `{"asset_ids": [], "operation": "analyze"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/batch/process", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBatchProcessResizeReportsUnsupported(t *testing.T) {
	registry := batch.NewRegistry()
	handler := BatchProcess(newBatchDispatcherForTest(t, registry), nil)
	owner := uuid.New()

	body := `{"asset_ids": ["` + uuid.NewString() + `"], "operation": "resize"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/batch/process", strings.NewReader(body)), owner)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data batch.SubmitResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.BatchStatusFailed {
		t.Fatalf("expected failed status got %s", envelope.Data.Status)
	}
	if envelope.Data.Message == "" {
		t.Fatal("expected a message explaining the failure")
	}
}

func TestBatchProcessMissingUserContext(t *testing.T) {
	handler := BatchProcess(newBatchDispatcherForTest(t, batch.NewRegistry()), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/process", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestBatchStatusScopedToOwner(t *testing.T) {
	registry := batch.NewRegistry()
	owner := uuid.New()
	jobID := registry.Create(owner, enums.BatchOperationAnalyze, 3)
	handler := BatchStatus(registry, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/batch/status/x", nil), uuid.New())
	req = withRouteParam(req, "jobId", jobID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign owner got %d", resp.Code)
	}

	req = withUser(httptest.NewRequest(http.MethodGet, "/api/v1/batch/status/x", nil), owner)
	req = withRouteParam(req, "jobId", jobID.String())
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data batch.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.JobID != jobID {
		t.Fatalf("unexpected job id: %s", envelope.Data.JobID)
	}
	if envelope.Data.TotalAssets != 3 {
		t.Fatalf("expected 3 total assets got %d", envelope.Data.TotalAssets)
	}
}

func TestBatchStatusInvalidJobID(t *testing.T) {
	handler := BatchStatus(batch.NewRegistry(), nil)
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/batch/status/x", nil), uuid.New())
	req = withRouteParam(req, "jobId", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBatchJobsListsOwnJobs(t *testing.T) {
	registry := batch.NewRegistry()
	owner := uuid.New()
	registry.Create(owner, enums.BatchOperationAnalyze, 1)
	registry.Create(owner, enums.BatchOperationFilter, 2)
	registry.Create(uuid.New(), enums.BatchOperationAnalyze, 5)

	handler := BatchJobs(registry, nil)
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/batch/jobs", nil), owner)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []batch.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 jobs got %d", len(envelope.Data))
	}
	if envelope.Data[0].Operation != enums.BatchOperationAnalyze || envelope.Data[1].Operation != enums.BatchOperationFilter {
		t.Fatalf("unexpected job order: %s, %s", envelope.Data[0].Operation, envelope.Data[1].Operation)
	}
}
