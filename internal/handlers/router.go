package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fengwz.me/garden/internal/middleware"
	"fengwz.me/garden/internal/observability"
)

const defaultRequestTimeout = 30 * time.Second

// RouterConfig holds transport options for Routes.
type RouterConfig struct {
	Assets         fs.FS
	SecureCookies  bool
	RequestTimeout time.Duration
}

// Routes builds the chi router with the middleware stack and every endpoint.
func (h *Handlers) Routes(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(h.logger))
	r.Use(observability.TraceMiddleware)
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware(h.logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))

	r.Get("/healthz", h.Healthz)
	r.Get("/sitemap.xml", h.Sitemap)
	if cfg.Assets != nil {
		r.Handle("/assets/*", middleware.AssetsWithCache(cfg.Assets, "/assets"))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.HTMX)
		r.Use(middleware.Locale(h.bundle))
		r.Use(middleware.CSRF(cfg.SecureCookies))

		r.Get("/", h.Page)
		r.Get("/about", h.Page)
		r.Get("/essays", h.Page)
		r.Get("/projects", h.Page)
		r.Get("/resume", h.Page)
		r.Get("/library", h.Page)
		r.Get("/library/{tab}", h.Page)
		r.Get("/geek", h.Page)
		r.Get("/geek/{tab}", h.Page)
		r.Get("/category/{slug}", h.Page)
		r.Get("/post/{slug}", h.Page)

		r.Get("/go", h.Go)
		r.Get("/go/*", h.Go)

		r.Get("/post/{slug}/comments", h.ListComments)
		r.Post("/post/{slug}/comments", h.AddComment)

		r.Post("/forms/newsletter", h.Newsletter)
		r.Post("/forms/consultation", h.Consultation)

		r.Route("/api/ai", func(r chi.Router) {
			r.Post("/summary", h.SummaryAPI)
			r.Post("/suggest", h.SuggestAPI)
			r.Post("/speech", h.SpeechAPI)
		})

		r.NotFound(h.Page)
	})
	return r
}
