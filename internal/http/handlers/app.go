package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"mediastudio/internal/domain"
	"mediastudio/internal/infra"
	"mediastudio/internal/storage"
)

// JobService is the orchestrator surface the video handlers depend on.
type JobService interface {
	Submit(ctx context.Context, imageRef, conceptText string, includeMusic bool) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
}

// App is the handler container with its injected collaborators.
type App struct {
	Jobs      JobService
	Templates domain.TemplateRepository
	Store     storage.BlobStore
	Logger    infra.Logger
	Metrics   http.Handler
}

// NewApp builds the handler container.
func NewApp(jobs JobService, templates domain.TemplateRepository, store storage.BlobStore, logger infra.Logger, metricsHandler http.Handler) *App {
	return &App{
		Jobs:      jobs,
		Templates: templates,
		Store:     store,
		Logger:    logger,
		Metrics:   metricsHandler,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}
