package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mockupgen/internal/domain"
	"mockupgen/internal/geometry"
	"mockupgen/internal/middleware"
	"mockupgen/internal/storage"
	"mockupgen/pkg/zip"
)

type mockupResponse struct {
	JobID        string           `json:"job_id"`
	Status       domain.JobStatus `json:"status"`
	Scheme       string           `json:"scheme"`
	TaskKey      string           `json:"task_key,omitempty"`
	ResultURLs   []string         `json:"result_urls"`
	ErrorKind    domain.ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	HasPreview   bool             `json:"has_preview"`
	Deduplicated bool             `json:"deduplicated,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func toMockupResponse(job *domain.MockupJob) mockupResponse {
	urls := job.ResultURLs
	if urls == nil {
		urls = []string{}
	}
	return mockupResponse{
		JobID:        job.ID,
		Status:       job.Status,
		Scheme:       job.Scheme,
		TaskKey:      job.TaskKey,
		ResultURLs:   urls,
		ErrorKind:    job.ErrorKind,
		ErrorMessage: job.ErrorMessage,
		HasPreview:   job.PreviewKey != "",
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// CreateMockup accepts a multipart canvas upload and queues a mockup job.
func (a *App) CreateMockup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	file, _, err := r.FormFile("canvas")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "canvas exceeds upload limit")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "multipart field \"canvas\" is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read canvas")
		return
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if v, ok := a.uploads.Get(digest); ok {
		job, err := a.Jobs.GetByID(r.Context(), v.(string))
		if err == nil && reusable(job) {
			resp := toMockupResponse(job)
			resp.Deduplicated = true
			a.json(w, http.StatusOK, resp)
			return
		}
		// Failed runs are retried with a fresh job.
		a.uploads.Delete(digest)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "canvas is not a decodable image")
		return
	}
	if err := a.Partitioner.CheckSize(cfg.Width, cfg.Height); err != nil {
		a.error(w, http.StatusUnprocessableEntity, string(domain.ErrorKindInputDimension), err.Error())
		return
	}

	jobID := uuid.NewString()
	canvasKey, err := a.Store.Write(r.Context(), fmt.Sprintf("canvas/%s.%s", jobID, canvasExtension(format)), data)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("store canvas")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store canvas")
		return
	}
	job := &domain.MockupJob{
		ID:           jobID,
		Status:       domain.JobStatusQueued,
		Scheme:       string(a.Partitioner.Template().Scheme),
		CanvasKey:    canvasKey,
		CanvasSHA256: digest,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("create mockup job")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.uploads.SetDefault(digest, jobID)
	a.Logger.Info().
		Str("job_id", jobID).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Msg("mockup job queued")
	a.json(w, http.StatusAccepted, toMockupResponse(job))
}

// MockupStatus reports a job's progress and results.
func (a *App) MockupStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, toMockupResponse(job))
}

// MockupPreview serves the partition overlay, rendering it from the stored
// canvas when the worker has not written one yet.
func (a *App) MockupPreview(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	if job.PreviewKey != "" {
		data, err := a.Store.Read(r.Context(), job.PreviewKey)
		if err == nil {
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
		a.Logger.Warn().Err(err).Str("job_id", job.ID).Msg("stored preview unavailable, rendering")
	}
	canvas, ok := a.loadCanvas(w, r, job)
	if !ok {
		return
	}
	preview, err := a.Partitioner.Preview(canvas)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, string(domain.ErrorKindInputDimension), err.Error())
		return
	}
	var buf bytes.Buffer
	if err := storage.EncodeImage(&buf, "preview.png", preview); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode preview")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// MockupPlacements returns the partitioned placement images as a zip of PNGs.
func (a *App) MockupPlacements(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	canvas, ok := a.loadCanvas(w, r, job)
	if !ok {
		return
	}
	part, err := a.Partitioner.Partition(canvas)
	if err != nil {
		var dimErr *geometry.InputDimensionError
		if errors.As(err, &dimErr) {
			a.error(w, http.StatusUnprocessableEntity, string(domain.ErrorKindInputDimension), err.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to partition canvas")
		return
	}
	assets := make([]zip.Asset, 0, part.Len())
	for _, placement := range domain.Placements() {
		name := placement.String() + ".png"
		var buf bytes.Buffer
		if err := storage.EncodeImage(&buf, name, part.Image(placement)); err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to encode placement")
			return
		}
		assets = append(assets, zip.Asset{Filename: name, MIME: "image/png", Data: buf.Bytes()})
	}
	archive, err := zip.ArchiveAssets(assets, job.CreatedAt)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=mockup-%s-placements.zip", job.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) loadJob(w http.ResponseWriter, r *http.Request) (*domain.MockupJob, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "id must be a uuid")
		return nil, false
	}
	job, err := a.Jobs.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "mockup job not found")
		return nil, false
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", id).Msg("load mockup job")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return nil, false
	}
	return job, true
}

func (a *App) loadCanvas(w http.ResponseWriter, r *http.Request, job *domain.MockupJob) (image.Image, bool) {
	canvas, err := a.Store.ReadImage(r.Context(), job.CanvasKey)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusGone, "gone", "canvas is no longer stored")
		return nil, false
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("load canvas")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load canvas")
		return nil, false
	}
	return canvas, true
}

// reusable reports whether a duplicate upload may be answered with job.
func reusable(job *domain.MockupJob) bool {
	switch job.Status {
	case domain.JobStatusQueued, domain.JobStatusRunning, domain.JobStatusSucceeded:
		return true
	default:
		return false
	}
}

func canvasExtension(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "":
		return "png"
	default:
		return format
	}
}
