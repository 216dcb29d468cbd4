package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/domain"
)

type generateVideoRequest struct {
	ImageRef     string `json:"image_ref"`
	ConceptText  string `json:"concept_text"`
	IncludeMusic bool   `json:"include_music"`
}

type jobResponse struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	RequestImageRef string    `json:"request_image_ref"`
	RequestPrompt   string    `json:"request_prompt"`
	IncludeMusic    bool      `json:"include_music"`
	MusicPrompt     string    `json:"music_prompt,omitempty"`
	MusicURL        string    `json:"music_url,omitempty"`
	ResultRef       string    `json:"result_ref,omitempty"`
	ResultPublicURL string    `json:"result_public_url,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toJobResponse(job *domain.Job) jobResponse {
	return jobResponse{
		ID:              job.ID,
		Status:          string(job.Status),
		RequestImageRef: job.RequestImageRef,
		RequestPrompt:   job.RequestPrompt,
		IncludeMusic:    job.IncludeMusic,
		MusicPrompt:     job.MusicPrompt,
		MusicURL:        job.MusicURL,
		ResultRef:       job.ResultRef,
		ResultPublicURL: job.ResultPublicURL,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

// VideosGenerate accepts a generation request, runs prompt preparation
// synchronously and returns the queued job record.
func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	job, err := a.Jobs.Submit(r.Context(), req.ImageRef, req.ConceptText, req.IncludeMusic)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, domain.ErrProviderFailure):
			a.error(w, http.StatusBadGateway, "provider_failure", err.Error())
		default:
			a.Logger.Error().Err(err).Msg("handlers: submit failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to queue video job")
		}
		return
	}
	a.json(w, http.StatusAccepted, toJobResponse(job))
}

// VideoJob returns one job by id.
func (a *App) VideoJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: load job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, toJobResponse(job))
}

// VideoJobs lists all jobs, newest first.
func (a *App) VideoJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.Jobs.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list jobs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}
	items := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, toJobResponse(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
