package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options carries the router's cross-cutting wiring.
type Options struct {
	Logger        zerolog.Logger
	JWTSecret     string
	Limiter       *middleware.Limiter
	CountryLookup middleware.CountryLookup
	CORSOrigins   []string
	DefaultLocale string

	// StaticDir serves stored artifacts under /static/ when the filesystem
	// storage backend is active. Empty disables the route.
	StaticDir string
}

// NewRouter assembles the HTTP surface: a public health check and lead
// form, and the authenticated generation API under /v1.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(middleware.RateLimit(opts.Limiter))
		}
		r.Post("/v1/demands", app.DemandsCreate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		if opts.Limiter != nil {
			r.Use(middleware.RateLimit(opts.Limiter))
		}

		r.Post("/v1/uploads", app.UploadsCreate)

		r.Route("/v1/generations", func(r chi.Router) {
			r.Post("/", app.GenerationsCreate)
			r.Get("/", app.GenerationsList)
			r.Get("/{job_id}", app.GenerationGet)
			r.Get("/{job_id}/status", app.GenerationStatus)
			r.Get("/{job_id}/download", app.GenerationDownload)
			r.Delete("/{job_id}", app.GenerationDelete)
		})
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
