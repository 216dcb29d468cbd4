package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediastudio/internal/domain"
)

type templatePayload struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TemplateText string `json:"template_text"`
}

type templateResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TemplateText string    `json:"template_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toTemplateResponse(tmpl *domain.Template) templateResponse {
	return templateResponse{
		ID:           tmpl.ID,
		Name:         tmpl.Name,
		Description:  tmpl.Description,
		TemplateText: tmpl.TemplateText,
		CreatedAt:    tmpl.CreatedAt,
		UpdatedAt:    tmpl.UpdatedAt,
	}
}

// displayName normalizes a template name for display.
func displayName(name string) string {
	c := cases.Title(language.Und)
	return c.String(strings.TrimSpace(name))
}

func (a *App) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req templatePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.TemplateText) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and template_text are required")
		return
	}
	tmpl := &domain.Template{
		Name:         displayName(req.Name),
		Description:  strings.TrimSpace(req.Description),
		TemplateText: req.TemplateText,
	}
	if err := a.Templates.Create(r.Context(), tmpl); err != nil {
		a.Logger.Error().Err(err).Msg("handlers: create template failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create template")
		return
	}
	a.json(w, http.StatusCreated, toTemplateResponse(tmpl))
}

func (a *App) TemplateList(w http.ResponseWriter, r *http.Request) {
	templates, err := a.Templates.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list templates failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list templates")
		return
	}
	items := make([]templateResponse, 0, len(templates))
	for i := range templates {
		items = append(items, toTemplateResponse(&templates[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) TemplateGet(w http.ResponseWriter, r *http.Request) {
	id, ok := a.templateID(w, r)
	if !ok {
		return
	}
	tmpl, err := a.Templates.GetByID(r.Context(), id)
	if err != nil {
		a.templateError(w, err, "failed to load template")
		return
	}
	a.json(w, http.StatusOK, toTemplateResponse(tmpl))
}

func (a *App) TemplateUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.templateID(w, r)
	if !ok {
		return
	}
	var req templatePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	tmpl, err := a.Templates.GetByID(r.Context(), id)
	if err != nil {
		a.templateError(w, err, "failed to load template")
		return
	}
	if req.Name != "" {
		tmpl.Name = displayName(req.Name)
	}
	if req.Description != "" {
		tmpl.Description = strings.TrimSpace(req.Description)
	}
	if req.TemplateText != "" {
		tmpl.TemplateText = req.TemplateText
	}
	if err := a.Templates.Update(r.Context(), tmpl); err != nil {
		a.templateError(w, err, "failed to update template")
		return
	}
	a.json(w, http.StatusOK, toTemplateResponse(tmpl))
}

func (a *App) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := a.templateID(w, r)
	if !ok {
		return
	}
	if err := a.Templates.Delete(r.Context(), id); err != nil {
		a.templateError(w, err, "failed to delete template")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (a *App) templateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "template_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid template id")
		return 0, false
	}
	return id, true
}

func (a *App) templateError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "template not found")
		return
	}
	a.Logger.Error().Err(err).Msg("handlers: " + message)
	a.error(w, http.StatusInternalServerError, "internal", message)
}
