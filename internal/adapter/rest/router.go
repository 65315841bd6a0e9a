package rest

import (
	"net/http"

	"github.com/FaizanHaider108/lookvisa/internal/adapter/rest/middleware"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/FaizanHaider108/lookvisa/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	JWTSecret   string
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.MetricsManager
	Logger      *logger.Logger
}

// NewRouter mounts the listing API. Telemetry endpoints are throttled when a RateLimiter is set.
func NewRouter(h *ListingHandler, cfg RouterConfig) http.Handler {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(cfg.Logger.Named("http"), cfg.Metrics))
	mux.Use(middleware.Recoverer(cfg.Logger))

	mux.Get("/healthz", Healthz)

	mux.Get("/api/search/listing", h.Search)
	mux.Get("/api/search/listing/all", h.SearchAll)
	mux.Get("/api/listing/{id}", h.GetListing)

	mux.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Post("/api/listing/{id}/impression", h.RecordImpression)
		r.Post("/api/listing/{id}/click", h.RecordClick)
	})

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Use(middleware.RequireSponsor)

		r.Get("/api/listing", h.MyListings)
		r.Post("/api/listing", h.CreateListing)
		r.Put("/api/listing/{id}", h.UpdateListing)
		r.Delete("/api/listing/{id}", h.DeleteListing)
		r.Patch("/api/listing/{id}/status", h.SetStatus)
		r.Post("/api/listing/{id}/attachments", h.AddAttachment)
	})

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
	})

	return otelhttp.NewHandler(mux, "lookvisa-http")
}
