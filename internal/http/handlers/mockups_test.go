package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mockupgen/internal/domain"
	"mockupgen/internal/geometry"
	"mockupgen/internal/infra"
	"mockupgen/internal/storage"
)

type memoryJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.MockupJob
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: map[string]*domain.MockupJob{}}
}

func (m *memoryJobs) Create(_ context.Context, job *domain.MockupJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *memoryJobs) GetByID(_ context.Context, id string) (*domain.MockupJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (m *memoryJobs) ClaimNext(context.Context) (*domain.MockupJob, error) {
	return nil, domain.ErrNotFound
}

func (m *memoryJobs) SetTaskKey(context.Context, string, string) error    { return nil }
func (m *memoryJobs) SetPreviewKey(context.Context, string, string) error { return nil }
func (m *memoryJobs) Complete(context.Context, string, []string) error    { return nil }
func (m *memoryJobs) Requeue(context.Context, string) error               { return nil }

func (m *memoryJobs) Fail(_ context.Context, id string, kind domain.ErrorKind, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = domain.JobStatusFailed
	job.ErrorKind = kind
	job.ErrorMessage = message
	return nil
}

type testEnv struct {
	app    *App
	jobs   *memoryJobs
	router http.Handler
}

func newTestEnv(t *testing.T, policy geometry.MismatchPolicy) *testEnv {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	partitioner, err := geometry.NewPartitioner(geometry.Options{
		Template: geometry.Template{
			Width:       60,
			Height:      40,
			Scheme:      geometry.SchemeMirror,
			Front:       image.Rect(15, 5, 45, 35),
			SleeveWidth: 8,
		},
		Policy: policy,
	})
	if err != nil {
		t.Fatalf("NewPartitioner: %v", err)
	}
	jobs := newMemoryJobs()
	cfg := &infra.Config{MaxUploadBytes: 1 << 20, DedupeWindow: time.Minute}
	app := NewApp(cfg, nil, jobs, store, partitioner)
	r := chi.NewRouter()
	app.Routes(r)
	return &testEnv{app: app, jobs: jobs, router: r}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("canvas", "canvas.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/v1/mockups/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateMockupQueuesJob(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	rec := env.do(uploadRequest(t, pngBytes(t, 60, 40)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp mockupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.JobStatusQueued || resp.Scheme != "mirror" {
		t.Fatalf("unexpected response %+v", resp)
	}
	job, err := env.jobs.GetByID(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if job.CanvasKey != "canvas/"+resp.JobID+".png" || job.CanvasSHA256 == "" {
		t.Fatalf("unexpected job %+v", job)
	}

	again := env.do(uploadRequest(t, pngBytes(t, 60, 40)))
	if again.Code != http.StatusOK {
		t.Fatalf("duplicate upload status = %d", again.Code)
	}
	var dup mockupResponse
	_ = json.Unmarshal(again.Body.Bytes(), &dup)
	if !dup.Deduplicated || dup.JobID != resp.JobID {
		t.Fatalf("expected deduplicated response for same canvas, got %+v", dup)
	}
}

func TestCreateMockupRequeuesFailedDuplicate(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	canvas := pngBytes(t, 60, 40)
	rec := env.do(uploadRequest(t, canvas))
	var first mockupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := env.jobs.Fail(context.Background(), first.JobID, domain.ErrorKindRenderTimeout, "still pending"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	again := env.do(uploadRequest(t, canvas))
	if again.Code != http.StatusAccepted {
		t.Fatalf("retry upload status = %d body=%s", again.Code, again.Body.String())
	}
	var retry mockupResponse
	_ = json.Unmarshal(again.Body.Bytes(), &retry)
	if retry.Deduplicated || retry.JobID == first.JobID || retry.Status != domain.JobStatusQueued {
		t.Fatalf("expected a fresh queued job, got %+v", retry)
	}
	if len(env.jobs.jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(env.jobs.jobs))
	}

	third := env.do(uploadRequest(t, canvas))
	var dup mockupResponse
	_ = json.Unmarshal(third.Body.Bytes(), &dup)
	if third.Code != http.StatusOK || !dup.Deduplicated || dup.JobID != retry.JobID {
		t.Fatalf("expected dedupe onto the retried job, got %d %+v", third.Code, dup)
	}
}

func TestCreateMockupRejectsWrongSize(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	rec := env.do(uploadRequest(t, pngBytes(t, 30, 40)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error.Code != "input_dimension" {
		t.Fatalf("error code = %q", body.Error.Code)
	}
	if len(env.jobs.jobs) != 0 {
		t.Fatalf("no job should be created")
	}
}

func TestCreateMockupAcceptsWrongSizeWhenResampling(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchResample)
	if rec := env.do(uploadRequest(t, pngBytes(t, 30, 20))); rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateMockupRejectsNonImages(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	if rec := env.do(uploadRequest(t, []byte("not an image"))); rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/mockups/", nil)
	if rec := env.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing field status = %d", rec.Code)
	}
}

func TestMockupStatusErrors(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	if rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/mockups/not-a-uuid", nil)); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
	if rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/mockups/6f1c3f5e-1d2b-4c55-9a4e-0a8d1c3b2a10", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("missing job status = %d", rec.Code)
	}
}

func TestMockupPreviewAndPlacements(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	rec := env.do(uploadRequest(t, pngBytes(t, 60, 40)))
	var resp mockupResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	preview := env.do(httptest.NewRequest(http.MethodGet, "/v1/mockups/"+resp.JobID+"/preview", nil))
	if preview.Code != http.StatusOK || preview.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("preview status = %d type = %q", preview.Code, preview.Header().Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader(preview.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if img.Bounds().Dx() != 60 {
		t.Fatalf("preview width = %d", img.Bounds().Dx())
	}

	archive := env.do(httptest.NewRequest(http.MethodGet, "/v1/mockups/"+resp.JobID+"/placements.zip", nil))
	if archive.Code != http.StatusOK {
		t.Fatalf("placements status = %d", archive.Code)
	}
	zr, err := zip.NewReader(bytes.NewReader(archive.Body.Bytes()), int64(archive.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"front.png", "back.png", "left_sleeve.png", "right_sleeve.png"}
	if len(names) != len(want) {
		t.Fatalf("archive entries = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("archive entries = %v, want %v", names, want)
		}
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, geometry.MismatchStrict)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}
