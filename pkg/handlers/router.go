package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"media-gallery/pkg/blobstore"
	"media-gallery/pkg/config"
	"media-gallery/pkg/metrics"
	"media-gallery/pkg/services"
)

// NewRouter builds the HTTP surface of svc: the gallery page, the JSON API
// under /api, static assets, metrics and health.
func NewRouter(svc *services.Service) http.Handler {
	cfg := svc.Config()
	h := NewHandlers(svc)
	limiter := NewLoginLimiter(cfg.LoginRatePerMinute)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(metrics.HTTPMiddleware)

	r.Get("/", h.IndexHandler)
	r.Get("/health", h.HealthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(notAllowed)

		r.With(limiter.Middleware).Post("/login", h.LoginHandler)
		r.Post("/upload", h.UploadHandler)
		r.Get("/categories", h.CategoriesHandler)
		r.Get("/images", h.ImagesHandler)
		r.Delete("/image", h.DeleteImageHandler)
		r.Delete("/category", h.DeleteCategoryHandler)
		r.Get("/config", h.GetConfigHandler)
		r.Post("/config", h.SetConfigHandler)
	})

	if cfg.BlobBackend == config.BackendLocal {
		prefix := "/" + blobstore.PathPrefix + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.GalleryDir))))
	}
	if cfg.PublicDir != "" {
		r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.PublicDir))))
	}

	return r
}
