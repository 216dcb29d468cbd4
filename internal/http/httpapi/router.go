package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mediastudio/internal/http/handlers"
	"mediastudio/internal/middleware"
)

// Options tunes the router's middleware stack.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
}

// NewRouter assembles the HTTP routes over the handler container.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)
	if app.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.Metrics)
	}

	r.Route("/video", func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).
				Post("/generate", app.VideosGenerate)
		} else {
			r.Post("/generate", app.VideosGenerate)
		}
		r.Get("/jobs", app.VideoJobs)
		r.Get("/jobs/{job_id}", app.VideoJob)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Post("/", app.TemplateCreate)
		r.Get("/", app.TemplateList)
		r.Get("/{template_id}", app.TemplateGet)
		r.Put("/{template_id}", app.TemplateUpdate)
		r.Delete("/{template_id}", app.TemplateDelete)
	})

	r.Route("/assets", func(r chi.Router) {
		r.Get("/", app.AssetsList)
		r.Post("/upload", app.AssetsUpload)
	})

	return r
}
