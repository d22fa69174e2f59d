package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"logomotion/internal/http/handlers"
	"logomotion/internal/middleware"
)

// Options carries the middleware knobs the router needs beyond the handlers.
type Options struct {
	AllowedOrigins  []string
	DefaultLocale   string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	Logger          func(http.Handler) http.Handler
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
	)
	if opts.Logger != nil {
		r.Use(opts.Logger)
	}
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/animations", func(r chi.Router) {
		r.Post("/", app.AnimationsCreate)
		r.Get("/{job_id}", app.AnimationStatus)
		r.Get("/{job_id}/video", app.AnimationVideo)
	})

	return r
}
