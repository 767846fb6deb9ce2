package handlers

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"mockupgen/internal/domain"
	"mockupgen/internal/geometry"
	"mockupgen/internal/infra"
)

// ObjectStore is the storage surface the handlers need.
type ObjectStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
	ReadImage(ctx context.Context, key string) (image.Image, error)
}

type App struct {
	Config      *infra.Config
	Logger      *infra.Logger
	Jobs        domain.MockupJobRepository
	Store       ObjectStore
	Partitioner *geometry.Partitioner
	// uploads maps canvas sha256 to the job created for it.
	uploads *cache.Cache
}

func NewApp(cfg *infra.Config, logger *infra.Logger, jobs domain.MockupJobRepository, store ObjectStore, partitioner *geometry.Partitioner) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	window := cfg.DedupeWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &App{
		Config:      cfg,
		Logger:      logger,
		Jobs:        jobs,
		Store:       store,
		Partitioner: partitioner,
		uploads:     cache.New(window, 2*window),
	}
}

// Routes mounts the mockup API on r.
func (a *App) Routes(r chi.Router) {
	r.Get("/v1/healthz", a.Health)
	r.Route("/v1/mockups", func(r chi.Router) {
		r.Post("/", a.CreateMockup)
		r.Get("/{id}", a.MockupStatus)
		r.Get("/{id}/preview", a.MockupPreview)
		r.Get("/{id}/placements.zip", a.MockupPlacements)
	})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}
